package traverse

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/omkarkirpan/bencedit/bencode"
)

// kind tags mixed into the hash ahead of each leaf payload, so that e.g.
// Int(0) and an empty ByteString never collide.
const (
	tagInt byte = iota
	tagString
	tagDictEnter
	tagListEnter
	tagContainerExit
	tagKeyElem
	tagIndexElem
)

// Hash computes a structural hash of v: two Values that compare equal
// under Value.Equal always hash equal, and distinct values hash unequal
// with overwhelming probability. It walks v with Walk, feeding the
// key-or-index and primitive payload of every leaf, in traversal order,
// into an xxhash.Digest.
func Hash(v *bencode.Value) uint64 {
	h := xxhash.New()
	var numBuf [8]byte

	Walk(v, func(elem PathElem, parent *bencode.Value, value *bencode.Value) Action {
		writeElem(h, numBuf[:], elem)

		if value == nil {
			h.Write([]byte{tagContainerExit})
			return Continue
		}

		switch value.Kind() {
		case bencode.KindInt:
			n, _ := value.AsInt()
			h.Write([]byte{tagInt})
			binary.LittleEndian.PutUint64(numBuf[:], uint64(n))
			h.Write(numBuf[:])
			return Continue
		case bencode.KindString:
			b, _ := value.AsBytes()
			h.Write([]byte{tagString})
			binary.LittleEndian.PutUint64(numBuf[:], uint64(len(b)))
			h.Write(numBuf[:])
			h.Write(b)
			return Continue
		case bencode.KindDict:
			h.Write([]byte{tagDictEnter})
			return Enter
		default: // KindList
			h.Write([]byte{tagListEnter})
			return Enter
		}
	})

	return h.Sum64()
}

func writeElem(h *xxhash.Digest, numBuf []byte, elem PathElem) {
	switch elem.Kind {
	case KeyElem:
		h.Write([]byte{tagKeyElem})
		binary.LittleEndian.PutUint64(numBuf, uint64(len(elem.Key)))
		h.Write(numBuf)
		h.Write(elem.Key)
	case IndexElem:
		h.Write([]byte{tagIndexElem})
		binary.LittleEndian.PutUint64(numBuf, uint64(elem.Index))
		h.Write(numBuf)
	}
	// RootElem contributes nothing: the root has no key-or-index of its own.
}
