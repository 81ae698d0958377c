package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// Keyer is implemented by arguments that know their own cache key.
type Keyer interface {
	CacheKey() (string, error)
}

// ResolveKey derives the cache key for a call of the function identified by name.
// An argument implementing Keyer supplies the key; an empty key, an error or a
// panic from the accessor falls back to HashKey.
func ResolveKey(name string, arg any) string {
	if k, ok := arg.(Keyer); ok {
		if key := accessorKey(k); key != "" {
			return key
		}
	}
	return HashKey(name, arg)
}

func accessorKey(k Keyer) (key string) {
	defer func() {
		if recover() != nil {
			key = ""
		}
	}()
	key, err := k.CacheKey()
	if err != nil {
		return ""
	}
	return key
}

// HashKey returns the md5 hex digest of the function name and its arguments.
// The Go-syntax form of the arguments is hashed next to their JSON so that
// unexported fields are part of the key. Pointers inside arguments contribute
// their address; pass values or implement Keyer.
func HashKey(name string, args ...any) string {
	h := md5.New()
	h.Write([]byte(name))
	h.Write([]byte{'|'})
	if encoded, err := json.Marshal(args); err == nil {
		h.Write(encoded)
	}
	h.Write([]byte{'|'})
	fmt.Fprintf(h, "%#v", args)
	return hex.EncodeToString(h.Sum(nil))
}
