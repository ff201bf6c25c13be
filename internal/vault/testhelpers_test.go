package vault

import "github.com/webblitchy/securevault/internal/primitives"

func decryptWithGroupKey(box primitives.EncryptedBox, groupKey [primitives.KeySize]byte) ([]byte, error) {
	return primitives.Decrypt(box, &groupKey)
}
