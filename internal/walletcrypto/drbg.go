package walletcrypto

import "crypto/hmac"
import "crypto/sha256"

// HMACDRBG is a NIST SP 800-90A HMAC_DRBG instance over SHA-256, without
// prediction resistance or additional input support. It is used to derive
// the content-encryption key and IV for BIP75 encrypted payment messages
// from an ECDH shared secret.
type HMACDRBG struct {
	k []byte
	v []byte
}

// NewHMACDRBG instantiates the generator from (seed || nonce || ps), each of
// which may be nil.
func NewHMACDRBG(seed, nonce, ps []byte) *HMACDRBG {
	d := &HMACDRBG{
		k: make([]byte, sha256.Size),
		v: make([]byte, sha256.Size),
	}
	for i := range d.v {
		d.v[i] = 0x01
	}
	material := concat(seed, nonce, ps)
	d.update(material)
	return d
}

func (d *HMACDRBG) update(providedData []byte) {
	mac := hmac.New(sha256.New, d.k)
	mac.Write(d.v)
	mac.Write([]byte{0x00})
	mac.Write(providedData)
	d.k = mac.Sum(nil)

	mac = hmac.New(sha256.New, d.k)
	mac.Write(d.v)
	d.v = mac.Sum(nil)

	if len(providedData) == 0 {
		return
	}

	mac = hmac.New(sha256.New, d.k)
	mac.Write(d.v)
	mac.Write([]byte{0x01})
	mac.Write(providedData)
	d.k = mac.Sum(nil)

	mac = hmac.New(sha256.New, d.k)
	mac.Write(d.v)
	d.v = mac.Sum(nil)
}

// Generate fills out with outLen pseudorandom bytes. Subsequent calls on the
// same instance advance the internal state, matching the "reuse K and V from
// the previous call" mode of the source's LWHMACDRBG contract.
func (d *HMACDRBG) Generate(outLen int) []byte {
	out := make([]byte, 0, outLen)
	for len(out) < outLen {
		mac := hmac.New(sha256.New, d.k)
		mac.Write(d.v)
		d.v = mac.Sum(nil)
		out = append(out, d.v...)
	}
	d.update(nil)
	return out[:outLen]
}

func concat(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Wipe clears the DRBG's internal state so the optimizer cannot elide it.
func (d *HMACDRBG) Wipe() {
	Wipe(d.k)
	Wipe(d.v)
}
