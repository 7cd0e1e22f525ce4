// Package cipher implements the symmetric transform used to carry a GitHub identity through the Spotify OAuth state parameter.
//
// The state parameter travels through the browser and Spotify's redirect, so it cannot hold GitHub credentials in the clear,
// and no server-side session exists to hold them instead. [StateCipher] encrypts the payload with AES-128 in CBC mode using
// a fresh random IV per call and PKCS#7 padding. The wire format is
//
//	base64(IV || ciphertext)
//
// with a fixed 16 byte IV prefix. Decoding never panics: bad base64, short input, misaligned ciphertext, bad padding and
// non UTF-8 plaintext all return errors wrapping [shared.ErrInvalidState].
//
// # Integrity
//
// CBC without a MAC is malleable. A modified state decrypts to garbage or fails padding validation, but there is no
// authentication tag that rejects tampering deterministically. The format is kept as is so state parameters issued by
// earlier deployments remain decodable; callers must treat decrypted identities as untrusted input and validate them.
package cipher
