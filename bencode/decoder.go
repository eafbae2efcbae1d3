package bencode

import (
	"bytes"
	"io"
	"strconv"
)

// ChunkSize is the maximum number of bytes the decoder pulls from its
// input source per read. Strings and containers may span many chunks;
// already-emitted bytes are never re-copied when a chunk boundary is
// crossed.
const ChunkSize = 2048

// MaxIntDigits bounds both the integer-literal body and the string
// length-prefix: either one accumulating more digits than this is
// rejected as oversized before any attempt to parse it as a number.
const MaxIntDigits = 32

// state names the decoder's explicit state machine. The decoder never
// recurses into the host call stack to handle nested containers — nesting
// depth lives entirely in dictStack/listStack below, so arbitrarily deep
// input cannot overflow the goroutine stack.
type state int

const (
	stRoot state = iota
	stDictKey
	stDictVal
	stStr
	stStrRem
	stInt
	stListVal
	stDictValStr
	stDictValInt
	stDictValDict
	stDictValList
	stDictFlush
	stListValStr
	stListValInt
	stListValDict
	stListValList
	stListFlush
	stRootValStr
	stRootValInt
	stRootValDict
	stRootValList
	stDone
)

type intMode int

const (
	intModeLength intMode = iota
	intModeValue
)

// Decoder is a chunked, non-recursive Bencode parser. Create one with
// NewDecoder and call Decode once; a Decoder is single-use.
type Decoder struct {
	r      io.Reader
	buf    []byte
	bufLen int
	bufPos int
	offset int64
	eof    bool

	state state

	// Parser stacks (§3.3): one dict/list container per open nesting
	// level, a pending key/value slot per open dict level, a pending item
	// slot per open list level, and a return-state-stack recording where
	// to resume once the value currently under construction completes.
	// Invariant: len(dictStack)+len(listStack) == current nesting depth;
	// len(returnStack) == that same depth (the decoder never pushes a
	// frame for the implicit root).
	dictStack   []*Dict
	listStack   []*List
	keySlot     [][]byte
	valSlot     []Value
	itemSlot    []Value
	returnStack []state

	pendingOrigin state
	intMode       intMode
	numBuf        []byte
	numNeg        bool

	strLen       int64
	strRemaining int64
	strBuf       []byte

	result Value
}

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:     r,
		buf:   make([]byte, ChunkSize),
		state: stRoot,
	}
}

// Decode consumes r until EOF and returns the single root Value it
// describes, or a *DecodeError.
func (d *Decoder) Decode() (Value, error) {
	_, ok, err := d.peekByte()
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return Value{}, &DecodeError{Kind: ErrEmpty}
	}

	for {
		if isRootHalt(d.state) {
			_, more, err := d.peekByte()
			if err != nil {
				return Value{}, err
			}
			if !more {
				d.state = stDone
				break
			}
			return Value{}, newSyntaxError(d.offset+1, "unexpected trailing data after root value")
		}
		if err := d.step(); err != nil {
			return Value{}, err
		}
	}
	return d.result, nil
}

func isRootHalt(s state) bool {
	switch s {
	case stRootValStr, stRootValInt, stRootValDict, stRootValList:
		return true
	default:
		return false
	}
}

// Load decodes a single Bencode value from r.
func Load(r io.Reader) (Value, error) {
	return NewDecoder(r).Decode()
}

// LoadBytes is a convenience over Load for an in-memory source.
func LoadBytes(b []byte) (Value, error) {
	return Load(bytes.NewReader(b))
}

func (d *Decoder) step() error {
	switch d.state {
	case stRoot:
		return d.dispatchPosition(stRoot)
	case stDictKey:
		return d.dispatchPosition(stDictKey)
	case stDictVal:
		return d.dispatchPosition(stDictVal)
	case stListVal:
		return d.dispatchPosition(stListVal)
	case stInt:
		return d.stepInt()
	case stStr, stStrRem:
		return d.stepStr()
	case stDictFlush:
		return d.stepDictFlush()
	case stListFlush:
		return d.stepListFlush()
	case stDictValStr, stDictValInt, stDictValDict, stDictValList:
		d.state = stDictFlush
		return nil
	case stListValStr, stListValInt, stListValDict, stListValList:
		d.state = stListFlush
		return nil
	default:
		return newInternalError(d.offset, "unreachable decoder state %d", d.state)
	}
}

// dispatchPosition handles the four states that are waiting for the next
// value (or, for stDictKey, the next key) to begin: Root, DictKey,
// DictVal, ListVal.
func (d *Decoder) dispatchPosition(origin state) error {
	b, ok, err := d.peekByte()
	if err != nil {
		return err
	}
	if !ok {
		return newEOFError(d.offset, "unexpected end of input while expecting a value")
	}

	switch {
	case b >= '0' && b <= '9':
		d.pendingOrigin = origin
		d.numBuf = d.numBuf[:0]
		d.numNeg = false
		d.intMode = intModeLength
		d.state = stInt
		return nil

	case b == 'i':
		if origin == stDictKey {
			return newSyntaxError(d.offset+1, "dict key must be a string, got an integer")
		}
		d.consumeByte()
		d.pendingOrigin = origin
		d.numBuf = d.numBuf[:0]
		d.numNeg = false
		d.intMode = intModeValue
		d.state = stInt
		return nil

	case b == 'd':
		if origin == stDictKey {
			return newSyntaxError(d.offset+1, "dict key must be a string, got a dict")
		}
		d.consumeByte()
		d.openDict(origin)
		return nil

	case b == 'l':
		if origin == stDictKey {
			return newSyntaxError(d.offset+1, "dict key must be a string, got a list")
		}
		d.consumeByte()
		d.openList(origin)
		return nil

	case b == 'e':
		switch origin {
		case stDictKey:
			d.consumeByte()
			return d.closeDict()
		case stListVal:
			d.consumeByte()
			return d.closeList()
		case stDictVal:
			return newSyntaxError(d.offset+1, "expected a value after dict key, got 'e'")
		default: // stRoot
			return newSyntaxError(d.offset+1, "unexpected 'e' at top level")
		}

	default:
		return newSyntaxError(d.offset+1, "unexpected byte %q", b)
	}
}

func (d *Decoder) openDict(origin state) {
	d.dictStack = append(d.dictStack, &Dict{})
	d.keySlot = append(d.keySlot, nil)
	d.valSlot = append(d.valSlot, Value{})
	d.returnStack = append(d.returnStack, dictInstallTarget(origin))
	d.state = stDictKey
}

func (d *Decoder) openList(origin state) {
	d.listStack = append(d.listStack, &List{})
	d.itemSlot = append(d.itemSlot, Value{})
	d.returnStack = append(d.returnStack, listInstallTarget(origin))
	d.state = stListVal
}

func dictInstallTarget(origin state) state {
	switch origin {
	case stDictVal:
		return stDictValDict
	case stListVal:
		return stListValDict
	default:
		return stRootValDict
	}
}

func listInstallTarget(origin state) state {
	switch origin {
	case stDictVal:
		return stDictValList
	case stListVal:
		return stListValList
	default:
		return stRootValList
	}
}

func (d *Decoder) closeDict() error {
	if len(d.dictStack) == 0 || len(d.returnStack) == 0 {
		return newInternalError(d.offset, "stack underflow closing dict")
	}
	n := len(d.dictStack) - 1
	completed := d.dictStack[n]
	d.dictStack = d.dictStack[:n]
	d.keySlot = d.keySlot[:len(d.keySlot)-1]
	d.valSlot = d.valSlot[:len(d.valSlot)-1]
	target := d.returnStack[len(d.returnStack)-1]
	d.returnStack = d.returnStack[:len(d.returnStack)-1]
	return d.installContainer(target, DictValue(completed))
}

func (d *Decoder) closeList() error {
	if len(d.listStack) == 0 || len(d.returnStack) == 0 {
		return newInternalError(d.offset, "stack underflow closing list")
	}
	n := len(d.listStack) - 1
	completed := d.listStack[n]
	d.listStack = d.listStack[:n]
	d.itemSlot = d.itemSlot[:len(d.itemSlot)-1]
	target := d.returnStack[len(d.returnStack)-1]
	d.returnStack = d.returnStack[:len(d.returnStack)-1]
	return d.installContainer(target, ListValue(completed))
}

func (d *Decoder) installContainer(target state, v Value) error {
	switch target {
	case stRootValDict, stRootValList:
		d.result = v
		d.state = target
		return nil
	case stDictValDict, stDictValList:
		if len(d.valSlot) == 0 {
			return newInternalError(d.offset, "val-slot underflow installing container")
		}
		d.valSlot[len(d.valSlot)-1] = v
		d.state = target
		return nil
	case stListValDict, stListValList:
		if len(d.itemSlot) == 0 {
			return newInternalError(d.offset, "item-slot underflow installing container")
		}
		d.itemSlot[len(d.itemSlot)-1] = v
		d.state = target
		return nil
	default:
		return newInternalError(d.offset, "unreachable container install target %d", target)
	}
}

func (d *Decoder) installStr(origin state, v Value) error {
	switch origin {
	case stDictKey:
		key, _ := v.AsBytes()
		d.keySlot[len(d.keySlot)-1] = key
		d.state = stDictVal
		return nil
	case stRoot:
		d.result = v
		d.state = stRootValStr
		return nil
	case stDictVal:
		d.valSlot[len(d.valSlot)-1] = v
		d.state = stDictValStr
		return nil
	case stListVal:
		d.itemSlot[len(d.itemSlot)-1] = v
		d.state = stListValStr
		return nil
	default:
		return newInternalError(d.offset, "unreachable string origin %d", origin)
	}
}

func (d *Decoder) installInt(origin state, v Value) error {
	switch origin {
	case stRoot:
		d.result = v
		d.state = stRootValInt
		return nil
	case stDictVal:
		d.valSlot[len(d.valSlot)-1] = v
		d.state = stDictValInt
		return nil
	case stListVal:
		d.itemSlot[len(d.itemSlot)-1] = v
		d.state = stListValInt
		return nil
	default:
		return newInternalError(d.offset, "unreachable int origin %d", origin)
	}
}

func (d *Decoder) stepInt() error {
	for {
		b, ok, err := d.peekByte()
		if err != nil {
			return err
		}
		if !ok {
			return newEOFError(d.offset, "unexpected end of input while parsing a number")
		}

		terminator := byte('e')
		if d.intMode == intModeLength {
			terminator = ':'
		}

		switch {
		case b == terminator:
			d.consumeByte()
			return d.finishInt()
		case b == '-':
			if d.intMode == intModeLength {
				return newSyntaxError(d.offset+1, "string length prefix must not be negative")
			}
			if len(d.numBuf) > 0 || d.numNeg {
				return newSyntaxError(d.offset+1, "unexpected '-' inside integer")
			}
			d.numNeg = true
			d.consumeByte()
		case b >= '0' && b <= '9':
			if len(d.numBuf) >= MaxIntDigits {
				return newOversizeError(d.offset+1, "integer literal exceeds %d digits", MaxIntDigits)
			}
			d.numBuf = append(d.numBuf, b)
			d.consumeByte()
		default:
			return newSyntaxError(d.offset+1, "unexpected byte %q in integer", b)
		}
	}
}

func (d *Decoder) finishInt() error {
	if len(d.numBuf) == 0 {
		return newSyntaxError(d.offset, "empty integer literal")
	}
	if d.intMode == intModeValue {
		if len(d.numBuf) > 1 && d.numBuf[0] == '0' {
			return newSyntaxError(d.offset, "leading zero in integer literal")
		}
		if d.numNeg && len(d.numBuf) == 1 && d.numBuf[0] == '0' {
			return newSyntaxError(d.offset, "negative zero is not a valid integer literal")
		}
	}

	s := string(d.numBuf)
	if d.intMode == intModeValue && d.numNeg {
		s = "-" + s
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return newOversizeError(d.offset, "integer literal out of range: %v", err)
	}

	if d.intMode == intModeLength {
		if n < 0 {
			return newSyntaxError(d.offset, "negative string length")
		}
		d.strLen = n
		d.strRemaining = n
		d.strBuf = make([]byte, 0, clampPrealloc(n))
		d.state = stStr
		return nil
	}
	return d.installInt(d.pendingOrigin, Int(n))
}

func clampPrealloc(n int64) int {
	const cap = 64 * 1024
	if n < 0 {
		return 0
	}
	if n > cap {
		return cap
	}
	return int(n)
}

// stepStr serves both stStr and stStrRem: copy whatever is available in
// the current chunk into strBuf, refilling and switching to stStrRem if
// the declared length doesn't fit in one chunk.
func (d *Decoder) stepStr() error {
	if d.strRemaining == 0 {
		return d.installStr(d.pendingOrigin, Bytes(d.strBuf))
	}

	avail := d.bufLen - d.bufPos
	if avail == 0 {
		if err := d.refill(); err != nil {
			return err
		}
		avail = d.bufLen - d.bufPos
		if avail == 0 {
			return newEOFError(d.offset, "unexpected end of input inside string body")
		}
	}

	take := d.strRemaining
	if int64(avail) < take {
		take = int64(avail)
	}
	d.strBuf = append(d.strBuf, d.buf[d.bufPos:d.bufPos+int(take)]...)
	d.bufPos += int(take)
	d.offset += take
	d.strRemaining -= take

	if d.strRemaining == 0 {
		return d.installStr(d.pendingOrigin, Bytes(d.strBuf))
	}
	d.state = stStrRem
	return nil
}

func (d *Decoder) stepDictFlush() error {
	n := len(d.dictStack) - 1
	if n < 0 || len(d.keySlot) == 0 || len(d.valSlot) == 0 {
		return newInternalError(d.offset, "stack underflow in dict flush")
	}
	key := d.keySlot[len(d.keySlot)-1]
	val := d.valSlot[len(d.valSlot)-1]
	d.dictStack[n].Set(key, val)
	d.keySlot[len(d.keySlot)-1] = nil
	d.valSlot[len(d.valSlot)-1] = Value{}

	b, ok, err := d.peekByte()
	if err != nil {
		return err
	}
	if !ok {
		return newEOFError(d.offset, "unexpected end of input inside dict")
	}
	if b == 'e' {
		d.consumeByte()
		return d.closeDict()
	}
	d.state = stDictKey
	return nil
}

func (d *Decoder) stepListFlush() error {
	n := len(d.listStack) - 1
	if n < 0 || len(d.itemSlot) == 0 {
		return newInternalError(d.offset, "stack underflow in list flush")
	}
	item := d.itemSlot[len(d.itemSlot)-1]
	d.listStack[n].Push(item)
	d.itemSlot[len(d.itemSlot)-1] = Value{}

	b, ok, err := d.peekByte()
	if err != nil {
		return err
	}
	if !ok {
		return newEOFError(d.offset, "unexpected end of input inside list")
	}
	if b == 'e' {
		d.consumeByte()
		return d.closeList()
	}
	d.state = stListVal
	return nil
}

func (d *Decoder) refill() error {
	if d.eof {
		return nil
	}
	n, err := d.r.Read(d.buf[:cap(d.buf)])
	d.bufLen = n
	d.bufPos = 0
	if err != nil {
		if err == io.EOF {
			d.eof = true
		} else {
			return newIOError(d.offset, err)
		}
	}
	if n == 0 && !d.eof {
		d.eof = true
	}
	return nil
}

func (d *Decoder) peekByte() (byte, bool, error) {
	if d.bufPos >= d.bufLen {
		if err := d.refill(); err != nil {
			return 0, false, err
		}
		if d.bufPos >= d.bufLen {
			return 0, false, nil
		}
	}
	return d.buf[d.bufPos], true, nil
}

func (d *Decoder) consumeByte() {
	d.bufPos++
	d.offset++
}
