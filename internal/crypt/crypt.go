// Package crypt implements the TPS file's block cipher: component B,
// layered transparently on top of bytesource.Source. When no password
// is configured, reads pass straight through to the underlying source.
//
// This is a format-compatibility cipher, not a security boundary — it
// exists because Clarion applications could optionally obfuscate TPS
// files with a password, and reading those files back out requires
// reproducing the same bit-twiddling the original driver used. A wrong
// password is never detected here; it surfaces downstream as a bad
// "tOpS" marker once header.Parse tries to read the decrypted header.
package crypt

import (
	"encoding/binary"

	"github.com/galler-alexander/tpsread/internal/bytesource"
)

const blockWords = 16
const blockBytes = blockWords * 4

// Decryptor wraps a bytesource.Source, transparently decrypting reads
// when a password has been set.
type Decryptor struct {
	src       bytesource.Source
	encrypted bool
	keys      [blockWords]uint32
}

// New builds a Decryptor. An empty password disables the cipher.
func New(src bytesource.Source, password string) *Decryptor {
	d := &Decryptor{src: src}
	if password == "" {
		return d
	}
	d.encrypted = true
	d.keys = keySchedule(password)
	return d
}

// keySchedule derives the 16-word key array from the password, per the
// two-stage construction: a 64-byte byte-key table built from a
// permuted index, then two passes of pairwise key mixing.
func keySchedule(password string) [blockWords]uint32 {
	pw := append([]byte(password), 0x00)

	var byteKeys [64]byte
	for i := 0; i < 64; i++ {
		byteKeys[(i*0x11)%64] = byte((i + int(pw[(i+1)%len(pw)])) % 256)
	}

	var keys [blockWords]uint32
	for i := 0; i < blockWords; i++ {
		keys[i] = binary.LittleEndian.Uint32(byteKeys[i*4 : i*4+4])
	}

	for pass := 0; pass < 2; pass++ {
		for posA := 0; posA < blockWords; posA++ {
			a := keys[posA]
			posB := a & 0x0F
			b := keys[posB]
			keys[posB] = a + (a & b)
			keys[posA] = (a | b) + a
		}
	}
	return keys
}

// IsEncrypted reports whether a password was configured.
func (d *Decryptor) IsEncrypted() bool { return d.encrypted }

// Size delegates to the underlying source.
func (d *Decryptor) Size() int64 { return d.src.Size() }

// Close delegates to the underlying source.
func (d *Decryptor) Close() error { return d.src.Close() }

// Read returns size decrypted bytes starting at pos.
func (d *Decryptor) Read(size int, pos int64) ([]byte, error) {
	if !d.encrypted {
		buf := make([]byte, size)
		if err := d.src.ReadAt(buf, pos); err != nil {
			return nil, err
		}
		return buf, nil
	}
	return d.decrypt(size, pos)
}

// decrypt reads the 64-byte-aligned superset of [pos, pos+size),
// decrypts it block by block, and returns the requested sub-slice.
func (d *Decryptor) decrypt(size int, pos int64) ([]byte, error) {
	start := pos &^ 0x3F
	end := ((pos + int64(size) - 1) | 0x3F) + 1

	raw := make([]byte, end-start)
	if err := d.src.ReadAt(raw, start); err != nil {
		return nil, err
	}

	for off := 0; off+blockBytes <= len(raw); off += blockBytes {
		d.decryptBlock(raw[off : off+blockBytes])
	}

	from := pos - start
	return raw[from : from+int64(size)], nil
}

// decryptBlock transforms one 16-word little-endian block in place.
func (d *Decryptor) decryptBlock(block []byte) {
	var words [blockWords]uint32
	for i := 0; i < blockWords; i++ {
		words[i] = binary.LittleEndian.Uint32(block[i*4 : i*4+4])
	}

	for i := 0; i < blockWords; i++ {
		posA := blockWords - 1 - i
		k := d.keys[posA]
		posB := k & 0x0F

		a := words[posA] - k
		b := words[posB] - k

		words[posA] = (a & k) | (b &^ k)
		words[posB] = (b & k) | (a &^ k)
	}

	for i := 0; i < blockWords; i++ {
		binary.LittleEndian.PutUint32(block[i*4:i*4+4], words[i])
	}
}
