/*
Copyright 2026, Cossack Labs Limited

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package token

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"sync"
	"testing"
	"testing/iotest"
	"time"
)

// reference vector from the Fernet format description
const (
	referenceKey   = "cw_0x689RpI-jtRR7oE8h_eQsKImvJapLeSbXpwF4e4="
	referenceToken = "gAAAAAAdwJ6wAAECAwQFBgcICQoLDA0ODy021cpGVWKZ_eEwCGM4BLLF_5CV9dOPmrhuVUPgJobwOz7JcbmrR64jVmpU4IwqDA=="
	referenceTime  = 499162800
)

func referenceIV() []byte {
	iv := make([]byte, IVSize)
	for i := range iv {
		iv[i] = byte(i)
	}
	return iv
}

func testKey(t testing.TB) *Key {
	key, err := DecodeKey(referenceKey)
	if err != nil {
		t.Fatal(err)
	}
	return key
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// resign replaces tag of decoded token with valid one for key
func resign(key *Key, raw []byte) []byte {
	signed := raw[:len(raw)-TagSize]
	out := append([]byte{}, signed...)
	out = append(out, sign(key, signed)...)
	return []byte(base64.URLEncoding.EncodeToString(out))
}

func decodeToken(t *testing.T, token []byte) []byte {
	raw, err := base64.URLEncoding.DecodeString(string(token))
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestSealReferenceVector(t *testing.T) {
	codec := NewCodec(
		WithClock(func() time.Time { return time.Unix(referenceTime, 0) }),
		WithRandom(bytes.NewReader(referenceIV())))
	token, err := codec.Seal([]byte("hello"), testKey(t))
	if err != nil {
		t.Fatal(err)
	}
	if string(token) != referenceToken {
		t.Fatalf("Unexpected token, took %s, expected %s", token, referenceToken)
	}
}

func TestOpenReferenceVector(t *testing.T) {
	codec := NewCodec()
	plaintext, err := codec.OpenAtTime([]byte(referenceToken), testKey(t), time.Minute, time.Unix(referenceTime+1, 0))
	if err != nil {
		t.Fatal(err)
	}
	if string(plaintext) != "hello" {
		t.Fatalf("Unexpected plaintext %q", plaintext)
	}
	if _, err := codec.OpenAtTime([]byte(referenceToken), testKey(t), time.Minute, time.Unix(referenceTime+61, 0)); !errors.Is(err, ErrExpired) {
		t.Fatalf("Expected ErrExpired, took %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	testCases := [][]byte{
		nil,
		{},
		[]byte("a"),
		[]byte("exactly 16 bytes"),
		bytes.Repeat([]byte{0}, 31),
		bytes.Repeat([]byte{0xff}, 32),
		bytes.Repeat([]byte("some data"), 1024),
	}
	for i, data := range testCases {
		token, err := Seal(data, key)
		if err != nil {
			t.Fatalf("[%d] %v", i, err)
		}
		plaintext, err := Open(token, key)
		if err != nil {
			t.Fatalf("[%d] %v", i, err)
		}
		if !bytes.Equal(plaintext, data) {
			t.Fatalf("[%d] Decrypted data not equal with source data", i)
		}
		if len(plaintext) == 0 && plaintext == nil {
			t.Fatalf("[%d] Expected non-nil empty result", i)
		}
	}
}

func TestSealUsesFreshIV(t *testing.T) {
	key := testKey(t)
	token1, err := Seal([]byte("hello"), key)
	if err != nil {
		t.Fatal(err)
	}
	token2, err := Seal([]byte("hello"), key)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(token1, token2) {
		t.Fatal("Two seals of the same message produced identical tokens")
	}
	raw1, raw2 := decodeToken(t, token1), decodeToken(t, token2)
	if bytes.Equal(raw1[IVPosition:CiphertextPosition], raw2[IVPosition:CiphertextPosition]) {
		t.Fatal("IV reused between seals")
	}
	for _, token := range [][]byte{token1, token2} {
		plaintext, err := Open(token, key)
		if err != nil {
			t.Fatal(err)
		}
		if string(plaintext) != "hello" {
			t.Fatalf("Unexpected plaintext %q", plaintext)
		}
	}
}

func TestTokenLayout(t *testing.T) {
	now := time.Unix(1700000000, 0)
	codec := NewCodec(WithClock(func() time.Time { return now }))
	token, err := codec.Seal([]byte("some data"), testKey(t))
	if err != nil {
		t.Fatal(err)
	}
	raw := decodeToken(t, token)
	if raw[VersionPosition] != Version {
		t.Fatalf("Unexpected version %x", raw[VersionPosition])
	}
	if ts := binary.BigEndian.Uint64(raw[TimestampPosition:IVPosition]); ts != uint64(now.Unix()) {
		t.Fatalf("Unexpected timestamp %d", ts)
	}
	if len(raw) != HeaderSize+aes.BlockSize+TagSize {
		t.Fatalf("Unexpected token length %d", len(raw))
	}
	extracted, err := codec.ExtractTimestamp(token, testKey(t))
	if err != nil {
		t.Fatal(err)
	}
	if !extracted.Equal(now) {
		t.Fatalf("Unexpected extracted timestamp %v", extracted)
	}
}

func TestTamperDetection(t *testing.T) {
	key := testKey(t)
	token, err := Seal([]byte("some data to protect"), key)
	if err != nil {
		t.Fatal(err)
	}
	raw := decodeToken(t, token)
	for i := range raw {
		for bit := 0; bit < 8; bit++ {
			tampered := append([]byte{}, raw...)
			tampered[i] ^= 1 << bit
			encoded := []byte(base64.URLEncoding.EncodeToString(tampered))
			_, err := Open(encoded, key)
			expected := ErrBadSignature
			if i == VersionPosition {
				expected = ErrBadVersion
			}
			if !errors.Is(err, expected) {
				t.Fatalf("byte %d bit %d: expected %v, took %v", i, bit, expected, err)
			}
		}
	}
}

func TestWrongKey(t *testing.T) {
	token, err := Seal([]byte("some data"), testKey(t))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		otherKey, err := GenerateKey()
		if err != nil {
			t.Fatal(err)
		}
		if _, err := Open(token, otherKey); !errors.Is(err, ErrBadSignature) {
			t.Fatalf("Expected ErrBadSignature, took %v", err)
		}
	}
	// same encryption key, different signing key
	key := *testKey(t)
	key[0] ^= 1
	if _, err := Open(token, &key); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("Expected ErrBadSignature, took %v", err)
	}
}

func TestVersionCoveredByTag(t *testing.T) {
	key := testKey(t)
	token, err := Seal([]byte("some data"), key)
	if err != nil {
		t.Fatal(err)
	}
	raw := decodeToken(t, token)
	raw[VersionPosition] = 0x81
	if _, err := Open(resign(key, raw), key); !errors.Is(err, ErrBadVersion) {
		t.Fatalf("Expected ErrBadVersion, took %v", err)
	}
}

func TestBadFormat(t *testing.T) {
	key := testKey(t)
	token, err := Seal([]byte("some data"), key)
	if err != nil {
		t.Fatal(err)
	}
	raw := decodeToken(t, token)

	testCases := [][]byte{
		nil,
		[]byte("not base64!"),
		[]byte(base64.URLEncoding.EncodeToString(raw[:MinTokenSize-1])),
		// standard alphabet is not accepted
		[]byte(base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0xfb}, MinTokenSize))),
		token[:len(token)-1],
	}
	for i, data := range testCases {
		if _, err := Open(data, key); !errors.Is(err, ErrBadFormat) {
			t.Fatalf("[%d] Expected ErrBadFormat, took %v", i, err)
		}
	}

	// correctly signed but ciphertext is not aligned to block size
	misaligned := append([]byte{}, raw[:len(raw)-TagSize]...)
	misaligned = append(misaligned, 0)
	misaligned = append(misaligned, make([]byte, TagSize)...)
	if _, err := Open(resign(key, misaligned), key); !errors.Is(err, ErrBadFormat) {
		t.Fatalf("Expected ErrBadFormat for misaligned ciphertext, took %v", err)
	}
}

func TestBadPadding(t *testing.T) {
	key := testKey(t)
	block, err := aes.NewCipher(key.EncryptionKey())
	if err != nil {
		t.Fatal(err)
	}
	iv := referenceIV()
	for _, lastByte := range []byte{0, 17, 0xff} {
		plain := bytes.Repeat([]byte{2}, aes.BlockSize)
		plain[aes.BlockSize-1] = lastByte
		ciphertext := make([]byte, aes.BlockSize)
		cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plain)

		raw := make([]byte, HeaderSize, HeaderSize+aes.BlockSize+TagSize)
		raw[VersionPosition] = Version
		copy(raw[IVPosition:], iv)
		raw = append(raw, ciphertext...)
		raw = append(raw, make([]byte, TagSize)...)
		if _, err := Open(resign(key, raw), key); !errors.Is(err, ErrBadPadding) {
			t.Fatalf("padding byte %d: expected ErrBadPadding, took %v", lastByte, err)
		}
	}
}

func TestTTL(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	codec := NewCodec(WithClock(clock.Now))
	key := testKey(t)
	token, err := codec.Seal([]byte("some data"), key)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := codec.OpenWithTTL(token, key, time.Second); err != nil {
		t.Fatal(err)
	}
	clock.Advance(2 * time.Second)
	if _, err := codec.OpenWithTTL(token, key, time.Second); !errors.Is(err, ErrExpired) {
		t.Fatalf("Expected ErrExpired, took %v", err)
	}
	// without ttl age is not checked
	if _, err := codec.Open(token, key); err != nil {
		t.Fatal(err)
	}
}

func TestTTLSecondGranularity(t *testing.T) {
	key := testKey(t)
	testCases := []struct {
		name     string
		sealedAt time.Duration
		openedAt time.Duration
		ttl      time.Duration
		expired  bool
	}{
		{"same second", 0, 900 * time.Millisecond, time.Second, false},
		{"fraction after ttl", 0, 1900 * time.Millisecond, time.Second, false},
		{"next whole second after ttl", 0, 2 * time.Second, time.Second, true},
		{"fractional ttl is truncated", 0, 2 * time.Second, 1900 * time.Millisecond, true},
		{"sub-second ttl means same second", 0, 999 * time.Millisecond, 500 * time.Millisecond, false},
		{"seal time is truncated", 900 * time.Millisecond, 2100 * time.Millisecond, time.Second, true},
	}
	for _, tcase := range testCases {
		t.Run(tcase.name, func(t *testing.T) {
			clock := &fakeClock{now: time.Unix(1700000000, 0)}
			codec := NewCodec(WithClock(clock.Now))
			clock.Advance(tcase.sealedAt)
			token, err := codec.Seal([]byte("some data"), key)
			if err != nil {
				t.Fatal(err)
			}
			clock.Advance(tcase.openedAt - tcase.sealedAt)
			_, err = codec.OpenWithTTL(token, key, tcase.ttl)
			if tcase.expired && !errors.Is(err, ErrExpired) {
				t.Fatalf("Expected ErrExpired, took %v", err)
			}
			if !tcase.expired && err != nil {
				t.Fatalf("Expected fresh token, took %v", err)
			}
		})
	}
}

func TestTimestampFromFuture(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	codec := NewCodec(WithClock(clock.Now))
	key := testKey(t)

	clock.Advance(DefaultMaxClockSkew + 2*time.Second)
	token, err := codec.Seal([]byte("some data"), key)
	if err != nil {
		t.Fatal(err)
	}
	clock.Advance(-(DefaultMaxClockSkew + 2*time.Second))
	if _, err := codec.OpenWithTTL(token, key, time.Hour); !errors.Is(err, ErrExpired) {
		t.Fatalf("Expected ErrExpired, took %v", err)
	}
	if _, err := codec.Open(token, key); err != nil {
		t.Fatal(err)
	}

	tolerant := NewCodec(WithClock(clock.Now), WithMaxClockSkew(time.Hour))
	if _, err := tolerant.OpenWithTTL(token, key, time.Hour); err != nil {
		t.Fatal(err)
	}
}

func TestSealRandomFailure(t *testing.T) {
	testErr := errors.New("no entropy")
	codec := NewCodec(WithRandom(iotest.ErrReader(testErr)))
	if _, err := codec.Seal([]byte("some data"), testKey(t)); !errors.Is(err, testErr) {
		t.Fatalf("Expected random source error, took %v", err)
	}
}

func TestExtractTimestampVerifiesSignature(t *testing.T) {
	otherKey, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewCodec().ExtractTimestamp([]byte(referenceToken), otherKey); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("Expected ErrBadSignature, took %v", err)
	}
}

func TestConcurrentUsage(t *testing.T) {
	key := testKey(t)
	codec := NewCodec()
	wg := sync.WaitGroup{}
	errCh := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data := bytes.Repeat([]byte{byte(i)}, i)
			token, err := codec.Seal(data, key)
			if err != nil {
				errCh <- err
				return
			}
			plaintext, err := codec.Open(token, key)
			if err != nil {
				errCh <- err
				return
			}
			if !bytes.Equal(plaintext, data) {
				errCh <- errors.New("decrypted data not equal with source data")
			}
		}(i)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatal(err)
	}
}

func BenchmarkSealOpen(b *testing.B) {
	key := testKey(b)
	data := bytes.Repeat([]byte("some data"), 128)
	for i := 0; i < b.N; i++ {
		token, err := Seal(data, key)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := Open(token, key); err != nil {
			b.Fatal(err)
		}
	}
}
