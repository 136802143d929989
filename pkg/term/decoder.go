package term

import (
	"io"
	"log"
	"time"

	"src.rawkey.dev/pkg/keys"
)

// DefaultEscapeTimeout is how long the Decoder waits for another byte after
// an ESC. Terminals send escape sequences in a single burst, so a longer gap
// means the Escape key was pressed on its own. A slow link may still split a
// sequence and get it decoded as Escape followed by other keys.
const DefaultEscapeTimeout = 50 * time.Millisecond

// Decoder decodes keys from a ByteSource. It keeps no state between keys. A
// Decoder must not be used from multiple goroutines concurrently.
type Decoder struct {
	src        ByteSource
	escTimeout time.Duration
	observer   func(keys.Key)
	logger     *log.Logger
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithObserver sets a function that is called with every decoded key, before
// ReadKey returns it.
func WithObserver(f func(keys.Key)) Option {
	return func(d *Decoder) { d.observer = f }
}

// WithEscapeTimeout overrides DefaultEscapeTimeout.
func WithEscapeTimeout(t time.Duration) Option {
	return func(d *Decoder) { d.escTimeout = t }
}

// WithLogger sets the logger for unrecognized sequences.
func WithLogger(l *log.Logger) Option {
	return func(d *Decoder) { d.logger = l }
}

// NewDecoder creates a Decoder reading from src.
func NewDecoder(src ByteSource, opts ...Option) *Decoder {
	d := &Decoder{src: src, escTimeout: DefaultEscapeTimeout, logger: logger}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SetObserver replaces the observer. The change takes effect from the next
// call to ReadKey.
func (d *Decoder) SetObserver(f func(keys.Key)) {
	d.observer = f
}

// ReadKey reads one key, blocking until the first byte is available.
//
// When a sequence is consumed but not recognized, it returns the zero Key and
// a *SeqError; the zero Key is passed to the observer too. Other errors come
// from the ByteSource: io.EOF if the input ended before the key started,
// io.ErrUnexpectedEOF if it ended within an escape sequence, and ErrStopped if
// the read was aborted. No key is passed to the observer in those cases.
func (d *Decoder) ReadKey() (keys.Key, error) {
	observer := d.observer
	k, err := d.decode()
	if err != nil && !IsReadErrorRecoverable(err) {
		return keys.Key{}, err
	}
	if observer != nil {
		observer(k)
	}
	return k, err
}

// Pump decodes keys and sends them on keyCh until ReadKey returns an error
// that is not recoverable, which it returns. Keys of unrecognized sequences
// are sent as the zero Key.
func (d *Decoder) Pump(keyCh chan<- keys.Key) error {
	for {
		k, err := d.ReadKey()
		if err != nil && !IsReadErrorRecoverable(err) {
			return err
		}
		keyCh <- k
	}
}

// Modifiers selected by the digit after ';' in an extended CSI sequence. The
// standard encoding also assigns '4' (Shift-Alt) and '6' (Shift-Ctrl); those
// are not supported.
var csiModifiers = map[byte]keys.Mod{
	'2': keys.Shift,
	'3': keys.Alt,
	'5': keys.Ctrl,
}

func (d *Decoder) decode() (keys.Key, error) {
	c, err := d.src.ReadByte()
	if err != nil {
		return keys.Key{}, err
	}

	seq := []byte{c}
	// Reads the next byte of the current sequence, blocking. The sequence has
	// started, so running out of input is unexpected.
	readByte := func() (byte, error) {
		b, err := d.src.ReadByte()
		if err == io.EOF {
			return 0, io.ErrUnexpectedEOF
		} else if err != nil {
			return 0, err
		}
		seq = append(seq, b)
		return b, nil
	}
	badSeq := func(msg string) (keys.Key, error) {
		d.logger.Printf("%s: %q", msg, seq)
		return keys.Key{}, &SeqError{msg, string(seq)}
	}

	switch c {
	case 0x1b: // ^[ Escape
		more, err := d.src.WaitForByte(d.escTimeout)
		if err != nil {
			return keys.Key{}, err
		}
		if !more {
			// Nothing follows. Taken as a lone Escape.
			return keys.K(keys.EscCode, keys.Escape), nil
		}
		next, err := d.src.ReadByte()
		if err == io.EOF {
			// The input ended right after the Escape.
			return keys.K(keys.EscCode, keys.Escape), nil
		} else if err != nil {
			return keys.Key{}, err
		}
		seq = append(seq, next)
		if next != '[' {
			// Something other than '[' follows. Taken as an Alt-modified key.
			return keys.K(uint32(next), keys.Alt), nil
		}

		// A '[' follows. CSI style arrow key sequence.
		r, err := readByte()
		if err != nil {
			return keys.Key{}, err
		}
		switch {
		case 'A' <= r && r <= 'D':
			// \e[A (Up)
			return keys.K(uint32(r), keys.Arrow), nil
		case '0' <= r && r <= '9':
			// \e[1;5A (Ctrl-Up). The remaining 3 bytes are always consumed,
			// so that a garbled sequence is drained from the input.
			var tail [3]byte
			for i := range tail {
				if tail[i], err = readByte(); err != nil {
					return keys.Key{}, err
				}
			}
			sep, sel, last := tail[0], tail[1], tail[2]
			if sep != ';' {
				return badSeq("bad CSI separator")
			}
			mod, ok := csiModifiers[sel]
			if !ok {
				return badSeq("unsupported CSI modifier")
			}
			return keys.K(uint32(last), keys.Arrow, mod), nil
		default:
			return badSeq("unsupported CSI")
		}
	case '\n', '\r':
		// CR and LF are both taken as Enter.
		return keys.K(keys.EnterCode, keys.Enter), nil
	default:
		return ctrlModify(c), nil
	}
}

// Determines whether a byte corresponds to a Ctrl- or Shift-modified key and
// returns the keys.Key the byte represents.
func ctrlModify(c byte) keys.Key {
	switch {
	case 1 <= c && c <= 26:
		// ^A to ^Z. The letter is recovered from the control byte.
		return keys.K(uint32(c)+'A'-1, keys.Ctrl)
	case 'A' <= c && c <= 'Z':
		// The byte is already the shifted form.
		return keys.K(uint32(c), keys.Shift)
	}
	return keys.K(uint32(c))
}
