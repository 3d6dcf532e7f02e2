// Package cipher is a sample producer with both a typed Go entry point and
// a byte-span entry point per capability, translating the original
// source's cipher_v1i1 interface (XOR cipher stand-in for the real
// implementation, which is out of scope here) and its
// encode/decode-on-the-span wrapper style.
package cipher

import (
	"fmt"

	"github.com/calvinalkan/ulib-broker/pkg/ipc"
	"github.com/calvinalkan/ulib-broker/pkg/ipc/wrapper"
)

const (
	InterfaceName    = "cipher"
	InterfaceVersion = 1
)

// EncryptArgs / EncryptResult are the model_in/model_out pair for
// "encrypt".
type EncryptArgs struct {
	Context uint32
	Src     []byte
}

type EncryptResult struct {
	Dest []byte
}

// DecryptArgs / DecryptResult are the model_in/model_out pair for
// "decrypt".
type DecryptArgs struct {
	Src []byte
}

type DecryptResult struct {
	Dest []byte
}

// xorKey stands in for the original's key-vault-backed cipher context;
// this sample only needs round-trip behavior, not real confidentiality.
func xorKey(ctx uint32) byte {
	return byte(ctx*2654435761) | 1
}

func encryptConcrete(modelIn, modelOut any) error {
	in, ok := modelIn.(*EncryptArgs)
	if !ok {
		return fmt.Errorf("cipher: encrypt: unexpected model_in type %T", modelIn)
	}

	out, ok := modelOut.(*EncryptResult)
	if !ok {
		return fmt.Errorf("cipher: encrypt: unexpected model_out type %T", modelOut)
	}

	key := xorKey(in.Context)
	dest := make([]byte, len(in.Src)+1)
	dest[0] = key

	for i, b := range in.Src {
		dest[i+1] = b ^ key
	}

	out.Dest = dest

	return nil
}

func decryptConcrete(modelIn, modelOut any) error {
	in, ok := modelIn.(*DecryptArgs)
	if !ok {
		return fmt.Errorf("cipher: decrypt: unexpected model_in type %T", modelIn)
	}

	out, ok := modelOut.(*DecryptResult)
	if !ok {
		return fmt.Errorf("cipher: decrypt: unexpected model_out type %T", modelOut)
	}

	// The original's decrypt command carries no context argument, and
	// this translation keeps decrypt context-free too, matching
	// cipher_v1i1_decrypt's signature: encrypt stores the context's key
	// in the ciphertext's first byte, and decrypt reads it back from there.
	if len(in.Src) == 0 {
		return fmt.Errorf("cipher: decrypt: empty ciphertext")
	}

	key := in.Src[0]
	dest := make([]byte, len(in.Src)-1)

	for i, b := range in.Src[1:] {
		dest[i] = b ^ key
	}

	out.Dest = dest

	return nil
}

// encryptSpan is the span-wrapper entry point a generated consumer
// wrapper calls through [ipc.Table.CallWithSpan], matching
// cipher_1_encrypt_span_wrapper's role (unmarshal args, call the typed
// concrete function, marshal the result) without the JSON detour: the
// wire format here is [pkg/ipc/wrapper]'s length-prefixed field
// sequence.
func encryptSpan(in, out []byte) error {
	dec := wrapper.NewDecoder(in)

	context, err := dec.Uint32()
	if err != nil {
		return fmt.Errorf("cipher: encrypt span: %w", err)
	}

	src, err := dec.Bytes()
	if err != nil {
		return fmt.Errorf("cipher: encrypt span: %w", err)
	}

	args := EncryptArgs{Context: context, Src: src}
	result := EncryptResult{}

	if err := encryptConcrete(&args, &result); err != nil {
		return err
	}

	enc := wrapper.NewEncoder()
	enc.PutBytes(result.Dest)
	copy(out, enc.Bytes())

	return nil
}

func decryptSpan(in, out []byte) error {
	dec := wrapper.NewDecoder(in)

	src, err := dec.Bytes()
	if err != nil {
		return fmt.Errorf("cipher: decrypt span: %w", err)
	}

	args := DecryptArgs{Src: src}
	result := DecryptResult{}

	if err := decryptConcrete(&args, &result); err != nil {
		return err
	}

	enc := wrapper.NewEncoder()
	enc.PutBytes(result.Dest)
	copy(out, enc.Bytes())

	return nil
}

// Descriptor returns the interface descriptor for Publish: two COMMAND
// capabilities, each carrying both a typed entry point and a span entry
// point, matching CIPHER_1_CAPABILITIES's dual-wrapper layout.
func Descriptor() *ipc.Descriptor {
	return &ipc.Descriptor{
		Name:    InterfaceName,
		Version: InterfaceVersion,
		Capabilities: []ipc.Capability{
			{Name: "encrypt", Kind: ipc.Command, Entry: encryptConcrete, Span: encryptSpan},
			{Name: "decrypt", Kind: ipc.Command, Entry: decryptConcrete, Span: decryptSpan},
		},
	}
}

// Producer publishes and unpublishes the cipher interface.
type Producer struct {
	table      *ipc.Table
	descriptor *ipc.Descriptor
}

// NewProducer constructs a Producer bound to table.
func NewProducer(table *ipc.Table) *Producer {
	return &Producer{table: table, descriptor: Descriptor()}
}

// Start publishes the cipher interface.
func (p *Producer) Start() error {
	_, err := p.table.Publish(p.descriptor)
	if err != nil {
		return fmt.Errorf("cipher: publish: %w", err)
	}

	return nil
}

// Stop unpublishes the cipher interface.
func (p *Producer) Stop(waitMs int) error {
	return p.table.Unpublish(p.descriptor, waitMs)
}
