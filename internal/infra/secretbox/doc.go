// Package secretbox seals short secrets, such as an API key kept in the
// CLI configuration file, under a passphrase.
//
// The key is derived with Argon2id and the payload is encrypted with
// XChaCha20-Poly1305. A sealed value is a printable string:
//
//	enc:v1:<base64(salt | nonce | ciphertext)>
//
// so it can live in a YAML file next to plain values.
package secretbox
