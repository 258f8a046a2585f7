package db

import "errors"

var (
	NamespaceMetadata       = []byte("md")
	NamespaceMetadataDigest = []byte("mdd")
	NamespaceTypes          = []byte("ty")
	EmptyKey                = []byte{}
	Separator               = []byte("|")
)

var (
	ErrInvalidIterator = errors.New("iterator is invalid")
	ErrTxDiscarded     = errors.New("commit after discard is not allowed")
	ErrTxCommitted     = errors.New("transaction is already committed")
)

func PrependNamespace(namespace []byte, key []byte) []byte {
	if namespace != nil {
		out := make([]byte, 0, len(namespace)+len(Separator)+len(key))
		return append(append(append(out, namespace...), Separator...), key...)
	}
	return key
}

func ConvNilToBytes(byteArray []byte) []byte {
	if byteArray == nil {
		return []byte{}
	}
	return byteArray
}

// NamespaceRange returns the iterator bounds covering every key of
// namespace.
func NamespaceRange(namespace []byte) (start []byte, end []byte) {
	start = PrependNamespace(namespace, nil)
	end = make([]byte, len(start))
	copy(end, start)
	end[len(end)-1]++
	return start, end
}

// TrimNamespace strips the namespace prefix added by PrependNamespace.
func TrimNamespace(namespace []byte, key []byte) []byte {
	n := len(namespace) + len(Separator)
	if len(key) < n {
		return key
	}
	return key[n:]
}
