package multisig

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/Klingon-tech/movekeys/pkg/bcs"
	"github.com/Klingon-tech/movekeys/pkg/crypto"
	"golang.org/x/crypto/sha3"
)

// testKeys returns n deterministic private keys.
func testKeys(t *testing.T, n int) []*crypto.PrivateKey {
	t.Helper()
	keys := make([]*crypto.PrivateKey, n)
	for i := range keys {
		seed := bytes.Repeat([]byte{byte(i + 1)}, crypto.SeedSize)
		k, err := crypto.PrivateKeyFromSeed(seed)
		if err != nil {
			t.Fatalf("PrivateKeyFromSeed(%d) error: %v", i, err)
		}
		keys[i] = k
	}
	return keys
}

func publicKeys(keys []*crypto.PrivateKey) []crypto.PublicKey {
	out := make([]crypto.PublicKey, len(keys))
	for i, k := range keys {
		out[i] = k.PublicKey()
	}
	return out
}

func fakeSig(b byte) crypto.Signature {
	var s crypto.Signature
	for i := range s {
		s[i] = b
	}
	return s
}

func TestNewPublicKey_Bounds(t *testing.T) {
	pubs := make([]crypto.PublicKey, 33)
	for i := range pubs {
		pubs[i][0] = byte(i)
	}

	tests := []struct {
		name      string
		n         int
		threshold uint8
		wantErr   error
	}{
		{"1 of 1", 1, 1, nil},
		{"2 of 3", 3, 2, nil},
		{"32 of 32", 32, 32, nil},
		{"zero threshold", 3, 0, ErrThresholdOutOfRange},
		{"threshold above keys", 2, 3, ErrThresholdOutOfRange},
		{"threshold above max", 32, 33, ErrThresholdOutOfRange},
		{"no keys", 0, 1, ErrThresholdOutOfRange},
		{"33 keys", 33, 1, ErrTooManyKeys},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pk, err := NewPublicKey(pubs[:tt.n], tt.threshold)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewPublicKey() error: %v", err)
			}
			if pk.Len() != tt.n || pk.Threshold() != tt.threshold {
				t.Errorf("got %d keys threshold %d", pk.Len(), pk.Threshold())
			}
		})
	}
}

func TestPublicKey_Bytes(t *testing.T) {
	keys := publicKeys(testKeys(t, 3))
	pk, err := NewPublicKey(keys, 2)
	if err != nil {
		t.Fatalf("NewPublicKey() error: %v", err)
	}

	b := pk.Bytes()
	if len(b) != 3*32+1 {
		t.Fatalf("len = %d, want 97", len(b))
	}
	if b[len(b)-1] != 2 {
		t.Errorf("last byte = %d, want threshold 2", b[len(b)-1])
	}
	for i, k := range keys {
		if !bytes.Equal(b[i*32:(i+1)*32], k[:]) {
			t.Errorf("key %d out of place", i)
		}
	}

	want := sha3.Sum256(append(b, 0x01))
	if got := pk.AuthenticationKey(); !bytes.Equal(got[:], want[:]) {
		t.Errorf("AuthenticationKey() = %s, want 0x%x", got, want)
	}
}

func TestPublicKey_KeysIsCopy(t *testing.T) {
	keys := publicKeys(testKeys(t, 2))
	pk, _ := NewPublicKey(keys, 1)

	keys[0][0] ^= 0xff
	got := pk.Keys()
	if got[0] == keys[0] {
		t.Error("caller mutation leaked into the key set")
	}
	got[1][0] ^= 0xff
	if pk.Keys()[1] == got[1] {
		t.Error("Keys() should return a copy")
	}
}

func TestParsePublicKey(t *testing.T) {
	keys := publicKeys(testKeys(t, 4))
	pk, _ := NewPublicKey(keys, 3)

	back, err := ParsePublicKey(pk.Bytes())
	if err != nil {
		t.Fatalf("ParsePublicKey() error: %v", err)
	}
	if !bytes.Equal(back.Bytes(), pk.Bytes()) {
		t.Error("roundtrip mismatch")
	}

	for _, n := range []int{0, 1, 32, 34, 64} {
		if _, err := ParsePublicKey(make([]byte, n)); !errors.Is(err, ErrMalformedPublicKey) {
			t.Errorf("len %d: error = %v, want ErrMalformedPublicKey", n, err)
		}
	}

	// Threshold byte larger than the key count.
	bad := append(append([]byte{}, keys[0][:]...), 2)
	if _, err := ParsePublicKey(bad); !errors.Is(err, ErrThresholdOutOfRange) {
		t.Errorf("error = %v, want ErrThresholdOutOfRange", err)
	}
}

func TestEncodePublicKey(t *testing.T) {
	keys := publicKeys(testKeys(t, 2))
	raw := [][]byte{keys[0].Bytes(), keys[1].Bytes()}

	b, err := EncodePublicKey(raw, 1)
	if err != nil {
		t.Fatalf("EncodePublicKey() error: %v", err)
	}
	pk, _ := NewPublicKey(keys, 1)
	if !bytes.Equal(b, pk.Bytes()) {
		t.Error("raw and typed encodings differ")
	}

	if _, err := EncodePublicKey([][]byte{make([]byte, 31)}, 1); !errors.Is(err, crypto.ErrInvalidKeyLength) {
		t.Errorf("error = %v, want ErrInvalidKeyLength", err)
	}
	if _, err := EncodePublicKey(make([][]byte, 33), 1); !errors.Is(err, ErrTooManyKeys) {
		t.Errorf("error = %v, want ErrTooManyKeys", err)
	}
}

func TestNewSignature_Order(t *testing.T) {
	sigA := fakeSig(0xaa)
	sigB := fakeSig(0xbb)

	s, err := NewSignature([]crypto.Signature{sigA, sigB}, []uint8{2, 0})
	if err != nil {
		t.Fatalf("NewSignature() error: %v", err)
	}

	b := s.Bytes()
	if len(b) != 2*64+4 {
		t.Fatalf("len = %d, want 132", len(b))
	}
	if !bytes.Equal(b[:64], sigB[:]) {
		t.Error("signature for index 0 should come first")
	}
	if !bytes.Equal(b[64:128], sigA[:]) {
		t.Error("signature for index 2 should come second")
	}
	if got := hex.EncodeToString(b[128:]); got != "a0000000" {
		t.Errorf("bitmap = %s, want a0000000", got)
	}
	if got := s.Indices(); !bytes.Equal(got, []uint8{0, 2}) {
		t.Errorf("Indices() = %v, want [0 2]", got)
	}
}

func TestNewSignature_Errors(t *testing.T) {
	sig := fakeSig(1)
	tests := []struct {
		name    string
		sigs    []crypto.Signature
		indices []uint8
		wantErr error
	}{
		{"count mismatch", []crypto.Signature{sig}, []uint8{0, 1}, ErrSignatureCountMismatch},
		{"index 32", []crypto.Signature{sig}, []uint8{32}, ErrBitIndex},
		{"index 255", []crypto.Signature{sig}, []uint8{255}, ErrBitIndex},
		{"duplicate", []crypto.Signature{sig, sig}, []uint8{3, 3}, ErrBitIndex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSignature(tt.sigs, tt.indices); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewSignature_Empty(t *testing.T) {
	s, err := NewSignature(nil, nil)
	if err != nil {
		t.Fatalf("NewSignature() error: %v", err)
	}
	if got := hex.EncodeToString(s.Bytes()); got != "00000000" {
		t.Errorf("Bytes() = %s, want bare zero bitmap", got)
	}
}

func TestEncodeSignature(t *testing.T) {
	a, b := fakeSig(1), fakeSig(2)
	raw, err := EncodeSignature([][]byte{a.Bytes(), b.Bytes()}, []uint8{31, 8})
	if err != nil {
		t.Fatalf("EncodeSignature() error: %v", err)
	}
	if !bytes.Equal(raw[:64], b[:]) || !bytes.Equal(raw[64:128], a[:]) {
		t.Error("signatures should be sorted by bit index")
	}
	if got := hex.EncodeToString(raw[128:]); got != "00800001" {
		t.Errorf("bitmap = %s, want 00800001", got)
	}

	if _, err := EncodeSignature([][]byte{make([]byte, 10)}, []uint8{0}); !errors.Is(err, crypto.ErrInvalidSignatureLength) {
		t.Errorf("error = %v, want ErrInvalidSignatureLength", err)
	}
}

func TestParseSignature(t *testing.T) {
	s, _ := NewSignature([]crypto.Signature{fakeSig(1), fakeSig(2)}, []uint8{5, 1})

	back, err := ParseSignature(s.Bytes())
	if err != nil {
		t.Fatalf("ParseSignature() error: %v", err)
	}
	if !bytes.Equal(back.Bytes(), s.Bytes()) {
		t.Error("roundtrip mismatch")
	}

	for _, n := range []int{0, 3, 5, 67} {
		if _, err := ParseSignature(make([]byte, n)); !errors.Is(err, ErrMalformedSignature) {
			t.Errorf("len %d: error = %v, want ErrMalformedSignature", n, err)
		}
	}

	// One signature, two bits set.
	bad := append(make([]byte, 64), 0xc0, 0, 0, 0)
	if _, err := ParseSignature(bad); !errors.Is(err, ErrSignatureCountMismatch) {
		t.Errorf("error = %v, want ErrSignatureCountMismatch", err)
	}
}

func TestVerify(t *testing.T) {
	priv := testKeys(t, 3)
	pk, err := NewPublicKey(publicKeys(priv), 2)
	if err != nil {
		t.Fatalf("NewPublicKey() error: %v", err)
	}
	msg := []byte("transfer 10")

	sign := func(i int) crypto.Signature {
		t.Helper()
		s, err := priv[i].Sign(msg)
		if err != nil {
			t.Fatalf("Sign() error: %v", err)
		}
		return s
	}

	good, _ := NewSignature([]crypto.Signature{sign(2), sign(0)}, []uint8{2, 0})
	if err := pk.Verify(msg, good); err != nil {
		t.Errorf("Verify() error: %v", err)
	}
	if err := pk.Verify([]byte("transfer 11"), good); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("wrong message: error = %v, want ErrInvalidSignature", err)
	}

	one, _ := NewSignature([]crypto.Signature{sign(1)}, []uint8{1})
	if err := pk.Verify(msg, one); !errors.Is(err, ErrBelowThreshold) {
		t.Errorf("error = %v, want ErrBelowThreshold", err)
	}

	swapped, _ := NewSignature([]crypto.Signature{sign(0), sign(2)}, []uint8{2, 0})
	if err := pk.Verify(msg, swapped); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("misattributed: error = %v, want ErrInvalidSignature", err)
	}

	outside, _ := NewSignature([]crypto.Signature{sign(0), sign(1)}, []uint8{0, 3})
	if err := pk.Verify(msg, outside); !errors.Is(err, ErrBitIndex) {
		t.Errorf("error = %v, want ErrBitIndex", err)
	}

	if err := pk.Verify(msg, nil); !errors.Is(err, ErrMalformedSignature) {
		t.Errorf("nil signature: error = %v, want ErrMalformedSignature", err)
	}
	if err := (Authenticator{PublicKey: pk}).Verify(msg); !errors.Is(err, ErrMalformedSignature) {
		t.Errorf("authenticator without signature: error = %v, want ErrMalformedSignature", err)
	}
}

func TestAggregate(t *testing.T) {
	priv := testKeys(t, 4)
	pk, _ := NewPublicKey(publicKeys(priv), 3)
	msg := []byte("payload")

	parts := make(map[crypto.PublicKey]crypto.Signature)
	for _, i := range []int{3, 1, 0} {
		s, _ := priv[i].Sign(msg)
		parts[priv[i].PublicKey()] = s
	}

	sig, err := pk.Aggregate(parts)
	if err != nil {
		t.Fatalf("Aggregate() error: %v", err)
	}
	if got := sig.Indices(); !bytes.Equal(got, []uint8{0, 1, 3}) {
		t.Errorf("Indices() = %v, want [0 1 3]", got)
	}
	if err := pk.Verify(msg, sig); err != nil {
		t.Errorf("Verify() error: %v", err)
	}

	stranger := testKeys(t, 5)[4]
	s, _ := stranger.Sign(msg)
	parts[stranger.PublicKey()] = s
	if _, err := pk.Aggregate(parts); !errors.Is(err, ErrUnknownSigner) {
		t.Errorf("error = %v, want ErrUnknownSigner", err)
	}
}

func TestAuthenticator_BCS(t *testing.T) {
	priv := testKeys(t, 2)
	pk, _ := NewPublicKey(publicKeys(priv), 1)
	msg := []byte("m")
	s, _ := priv[1].Sign(msg)
	sig, _ := NewSignature([]crypto.Signature{s}, []uint8{1})

	auth := Authenticator{PublicKey: pk, Signature: sig}
	if err := auth.Verify(msg); err != nil {
		t.Fatalf("Verify() error: %v", err)
	}

	type signedTxn struct {
		Authenticator bcs.Variant
	}
	b, err := bcs.Marshal(signedTxn{Authenticator: auth})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	// variant 1, 65-byte key set, 68-byte signature
	if len(b) != 1+1+65+1+68 {
		t.Fatalf("encoded length = %d, want 136", len(b))
	}
	if b[0] != 0x01 || b[1] != 65 || b[67] != 68 {
		t.Errorf("unexpected layout: %x", b[:4])
	}

	var back PublicKey
	if err := bcs.Unmarshal(b[1:67], &back); err != nil {
		t.Fatalf("Unmarshal(key) error: %v", err)
	}
	if !bytes.Equal(back.Bytes(), pk.Bytes()) {
		t.Error("key set roundtrip mismatch")
	}
	var backSig Signature
	if err := bcs.Unmarshal(b[67:], &backSig); err != nil {
		t.Fatalf("Unmarshal(sig) error: %v", err)
	}
	if !bytes.Equal(backSig.Bytes(), sig.Bytes()) {
		t.Error("signature roundtrip mismatch")
	}
}

func TestBitmap(t *testing.T) {
	var b Bitmap
	if b.Highest() != -1 || b.Count() != 0 {
		t.Fatal("empty bitmap")
	}
	for _, i := range []uint8{0, 7, 8, 31} {
		b.Set(i)
	}
	if got := hex.EncodeToString(b[:]); got != "81800001" {
		t.Errorf("bitmap = %s, want 81800001", got)
	}
	if b.Count() != 4 {
		t.Errorf("Count() = %d, want 4", b.Count())
	}
	if b.Highest() != 31 {
		t.Errorf("Highest() = %d, want 31", b.Highest())
	}
	if b.Set(32) || b.Set(255) {
		t.Error("Set() should reject indices past the bitmap")
	}
	if got := hex.EncodeToString(b[:]); got != "81800001" {
		t.Errorf("out-of-range Set changed bitmap to %s", got)
	}
	if !b.Has(7) || b.Has(6) || b.Has(40) {
		t.Error("Has() mismatch")
	}
	if got := b.Indices(); !bytes.Equal(got, []uint8{0, 7, 8, 31}) {
		t.Errorf("Indices() = %v", got)
	}
}
