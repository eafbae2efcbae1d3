// Package torrent reads the handful of well-known fields that give a
// Bencode metainfo (.torrent) file its meaning on top of the generic
// bencode.Value tree: announce URL, the info dictionary's piece layout,
// and the derived info-hash peers use to identify a swarm. It is a thin,
// read-only convenience layer over bencode — bencedit's core
// domain is editing arbitrary Bencode, and torrent files are simply the
// most common Bencode document in the wild, so `bencedit dump --summary`
// uses this package to render one meaningfully instead of as a raw tree.
package torrent

import (
	"crypto/sha1"
	"errors"
	"fmt"

	"github.com/omkarkirpan/bencedit/bencode"
)

// FileInfo describes one file entry in a multi-file torrent's file list.
type FileInfo struct {
	Length int64
	Path   []string
}

// Summary is the subset of a torrent metainfo dictionary bencedit knows
// how to describe. It is read directly off a decoded bencode.Value, not
// reconstructed through struct tags or reflection.
type Summary struct {
	Announce    string
	Name        string
	PieceLength int64
	Pieces      []byte
	Length      int64 // single-file mode; zero when Files is set
	Files       []FileInfo
	Private     int64
}

// Summarize reads the well-known torrent fields out of root, which must
// be the dict produced by decoding a .torrent file. It does not validate
// every field the way a strict BEP-3 parser would; it reports what it can
// find and errors only when root is not a dict or one of the handful of
// fields an editable torrent must have is missing or ill-typed (info
// dict, name, piece length, pieces with a length that is a multiple of
// 20, and either length or a well-formed files list).
func Summarize(root bencode.Value) (*Summary, error) {
	d, ok := root.AsDict()
	if !ok {
		return nil, errors.New("torrent: root is not a dict")
	}

	s := &Summary{}
	if v, ok := d.Get([]byte("announce")); ok {
		s.Announce, _ = v.AsString()
	}

	infoV, ok := d.Get([]byte("info"))
	if !ok {
		return nil, errors.New("torrent: missing \"info\" dict")
	}
	info, ok := infoV.AsDict()
	if !ok {
		return nil, errors.New("torrent: \"info\" is not a dict")
	}

	nameV, ok := info.Get([]byte("name"))
	if !ok {
		return nil, errors.New("torrent: info dict missing \"name\"")
	}
	s.Name, _ = nameV.AsString()

	plV, ok := info.Get([]byte("piece length"))
	if !ok {
		return nil, errors.New("torrent: info dict missing \"piece length\"")
	}
	s.PieceLength, ok = plV.AsInt()
	if !ok {
		return nil, errors.New("torrent: \"piece length\" is not an int")
	}

	piecesV, ok := info.Get([]byte("pieces"))
	if !ok {
		return nil, errors.New("torrent: info dict missing \"pieces\"")
	}
	s.Pieces, ok = piecesV.AsBytes()
	if !ok {
		return nil, errors.New("torrent: \"pieces\" is not a byte string")
	}
	if len(s.Pieces)%20 != 0 {
		return nil, fmt.Errorf("torrent: \"pieces\" length %d is not a multiple of 20", len(s.Pieces))
	}

	if lenV, ok := info.Get([]byte("length")); ok {
		s.Length, _ = lenV.AsInt()
	} else if filesV, ok := info.Get([]byte("files")); ok {
		files, ok := filesV.AsList()
		if !ok {
			return nil, errors.New("torrent: \"files\" is not a list")
		}
		var err error
		files.Each(func(i int, fv bencode.Value) {
			if err != nil {
				return
			}
			fi, ferr := fileInfoFrom(fv)
			if ferr != nil {
				err = fmt.Errorf("torrent: files[%d]: %w", i, ferr)
				return
			}
			s.Files = append(s.Files, fi)
		})
		if err != nil {
			return nil, err
		}
	} else {
		return nil, errors.New("torrent: info dict has neither \"length\" nor \"files\"")
	}

	if privV, ok := info.Get([]byte("private")); ok {
		s.Private, _ = privV.AsInt()
	}

	return s, nil
}

func fileInfoFrom(v bencode.Value) (FileInfo, error) {
	d, ok := v.AsDict()
	if !ok {
		return FileInfo{}, errors.New("file entry is not a dict")
	}
	lenV, ok := d.Get([]byte("length"))
	if !ok {
		return FileInfo{}, errors.New("missing \"length\"")
	}
	length, ok := lenV.AsInt()
	if !ok {
		return FileInfo{}, errors.New("\"length\" is not an int")
	}
	pathV, ok := d.Get([]byte("path"))
	if !ok {
		return FileInfo{}, errors.New("missing \"path\"")
	}
	pathList, ok := pathV.AsList()
	if !ok {
		return FileInfo{}, errors.New("\"path\" is not a list")
	}
	var path []string
	var err error
	pathList.Each(func(i int, pv bencode.Value) {
		if err != nil {
			return
		}
		seg, ok := pv.AsString()
		if !ok {
			err = fmt.Errorf("path[%d] is not a string", i)
			return
		}
		path = append(path, seg)
	})
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{Length: length, Path: path}, nil
}

// TotalLength returns the sum of every file's length: Length itself in
// single-file mode, or the sum of Files otherwise.
func (s *Summary) TotalLength() int64 {
	if len(s.Files) == 0 {
		return s.Length
	}
	var total int64
	for _, f := range s.Files {
		total += f.Length
	}
	return total
}

// NumPieces returns the number of fixed-size pieces the file(s) are split
// into, derived from the length of the pieces byte string.
func (s *Summary) NumPieces() int { return len(s.Pieces) / 20 }

// PieceHash returns the 20-byte SHA-1 hash recorded for piece i.
func (s *Summary) PieceHash(i int) ([20]byte, error) {
	n := s.NumPieces()
	if i < 0 || i >= n {
		return [20]byte{}, fmt.Errorf("torrent: piece index %d out of range (total %d)", i, n)
	}
	var h [20]byte
	copy(h[:], s.Pieces[i*20:(i+1)*20])
	return h, nil
}

// PieceLengthAt returns the byte length of piece i: PieceLength for every
// piece but the last, which may be shorter.
func (s *Summary) PieceLengthAt(i int) int64 {
	n := s.NumPieces()
	if i < 0 || i >= n {
		return 0
	}
	if i < n-1 {
		return s.PieceLength
	}
	total := s.TotalLength()
	if rem := total % s.PieceLength; rem != 0 {
		return rem
	}
	return s.PieceLength
}

// InfoHash returns the SHA-1 hash of the canonically re-encoded "info"
// dict of root, the value peers and trackers use to identify a torrent.
// Because ascending key order is an invariant of Dict, not just an
// encoder choice, this needs no special-cased re-serialisation: it
// simply re-encodes whatever Value sits at root.info. For an info dict
// that was canonical on disk this reproduces its original bytes; a
// non-canonical one (unsorted keys, zero-padded string lengths) is hashed
// in its canonical re-encoding instead.
func InfoHash(root bencode.Value) ([20]byte, error) {
	d, ok := root.AsDict()
	if !ok {
		return [20]byte{}, errors.New("torrent: root is not a dict")
	}
	infoV, ok := d.Get([]byte("info"))
	if !ok {
		return [20]byte{}, errors.New("torrent: missing \"info\" dict")
	}
	encoded, err := bencode.EncodeBytes(infoV)
	if err != nil {
		return [20]byte{}, err
	}
	return sha1.Sum(encoded), nil
}
