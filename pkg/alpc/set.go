package alpc

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shubham0d/sandbox-attacksurface-analysis-tools/pkg/log"
	"github.com/shubham0d/sandbox-attacksurface-analysis-tools/pkg/native"
)

// AttributeSet is the caller-facing collection of attributes for one IPC
// operation, plus the buffer backing them. Attributes are keyed by flag;
// supplying two attributes with the same flag keeps the last one.
//
// The set owns its buffer and the caller owns the set: Close must run
// exactly once when the operation is done (it tolerates repeats), and
// Release must run once per operation regardless of outcome.
type AttributeSet struct {
	attrs  map[AttributeFlag]MessageAttribute
	buf    *AttributeBuffer
	opID   string
	logger log.Logger
	closed bool
}

// SetOption configures an AttributeSet at construction.
type SetOption func(*setOptions)

type setOptions struct {
	initialize bool
	logger     log.Logger
	opID       string
}

// WithInitialize runs the initialize pass before NewAttributeSet returns,
// so the buffer is ready to hand to the transport call immediately.
func WithInitialize() SetOption {
	return func(o *setOptions) { o.initialize = true }
}

// WithLogger attaches an operation event logger. Nil is treated as
// NoopLogger.
func WithLogger(l log.Logger) SetOption {
	return func(o *setOptions) { o.logger = l }
}

// WithOperationID overrides the generated operation correlation ID.
func WithOperationID(id string) SetOption {
	return func(o *setOptions) { o.opID = id }
}

// NewAttributeSet builds the set for one operation. Attributes are
// deduped by flag (last wins). An empty set gets the null buffer and
// performs no native allocation; otherwise the buffer is created for the
// flag union via the two-phase layout contract, and construction fails
// with the buffer's error if either phase does.
func NewAttributeSet(alloc LayoutAllocator, mem native.Memory, attrs []MessageAttribute, opts ...SetOption) (*AttributeSet, error) {
	cfg := setOptions{logger: log.NoopLogger{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.NoopLogger{}
	}
	if cfg.opID == "" {
		cfg.opID = uuid.NewString()
	}

	keyed := make(map[AttributeFlag]MessageAttribute, len(attrs))
	var flags AttributeFlag
	for _, attr := range attrs {
		keyed[attr.Flag()] = attr
		flags |= attr.Flag()
	}

	s := &AttributeSet{
		attrs:  keyed,
		buf:    NullAttributeBuffer(),
		opID:   cfg.opID,
		logger: cfg.logger,
	}
	if flags != 0 {
		buf, err := NewAttributeBuffer(alloc, mem, flags)
		if err != nil {
			s.logEvent(log.KindCreate, err)
			return nil, err
		}
		s.buf = buf
	}
	s.logEvent(log.KindCreate, nil)

	if cfg.initialize {
		if err := s.Initialize(); err != nil {
			// The partially initialized buffer is useless; free it now
			// rather than making the caller Close a set it never got.
			closeErr := s.buf.Close()
			s.closed = true
			if closeErr != nil {
				return nil, errors.Join(err, closeErr)
			}
			return nil, err
		}
	}
	return s, nil
}

// Initialize writes every attribute into the buffer. Order across
// attributes is unspecified. Called by NewAttributeSet when
// WithInitialize was supplied.
func (s *AttributeSet) Initialize() error {
	for _, attr := range s.attrs {
		if err := attr.Initialize(s.buf); err != nil {
			err = fmt.Errorf("initialize %s attribute: %w", attr.Flag(), err)
			s.logEvent(log.KindInitialize, err)
			return err
		}
	}
	s.logEvent(log.KindInitialize, nil)
	return nil
}

// Rebuild re-reads every attribute from the buffer after the transport
// call completed, so in-memory fields reflect whatever the facility wrote
// back. The first failure stops the pass; Release remains safe to run
// afterwards.
func (s *AttributeSet) Rebuild() error {
	for _, attr := range s.attrs {
		if err := attr.Rebuild(s.buf); err != nil {
			err = fmt.Errorf("rebuild %s attribute: %w", attr.Flag(), err)
			s.logEvent(log.KindRebuild, err)
			return err
		}
	}
	s.logEvent(log.KindRebuild, nil)
	return nil
}

// Release runs every attribute's endpoint-scoped cleanup. Every attribute
// is visited even when earlier ones fail; failures are joined into one
// aggregate error. Call once per operation, success or not, typically
// from a deferred cleanup path.
func (s *AttributeSet) Release(ep Endpoint) error {
	var errs []error
	for _, attr := range s.attrs {
		if err := attr.Release(ep); err != nil {
			errs = append(errs, fmt.Errorf("release %s attribute: %w", attr.Flag(), err))
		}
	}
	err := errors.Join(errs...)
	s.logEvent(log.KindRelease, err)
	return err
}

// Close disposes the owned buffer. Idempotent and safe on the null
// buffer.
func (s *AttributeSet) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.buf.Close()
	s.logEvent(log.KindDispose, err)
	return err
}

// Buffer returns the backing buffer for the transport call.
func (s *AttributeSet) Buffer() *AttributeBuffer { return s.buf }

// DetachBuffer transfers buffer ownership out of the set, for handing to
// a result object that outlives it. The set's own Close becomes a no-op
// with respect to the native memory.
func (s *AttributeSet) DetachBuffer() *AttributeBuffer { return s.buf.Detach() }

// Flags returns the set's attribute flag union.
func (s *AttributeSet) Flags() AttributeFlag { return s.buf.Flags() }

// OperationID returns the set's correlation ID.
func (s *AttributeSet) OperationID() string { return s.opID }

// Attribute returns the attribute registered for flag, if any.
func (s *AttributeSet) Attribute(flag AttributeFlag) (MessageAttribute, bool) {
	attr, ok := s.attrs[flag]
	return attr, ok
}

// Len returns the number of distinct attributes in the set.
func (s *AttributeSet) Len() int { return len(s.attrs) }

func (s *AttributeSet) logEvent(kind log.Kind, err error) {
	event := log.Event{
		Timestamp:   time.Now(),
		OperationID: s.opID,
		Kind:        kind,
		Flags:       uint32(s.buf.Flags()),
		BufferLen:   s.buf.Len(),
		AuxCount:    s.buf.AuxCount(),
	}
	if err != nil {
		event.Error = err.Error()
		var layoutErr *LayoutError
		if errors.As(err, &layoutErr) {
			event.Status = uint32(layoutErr.Status)
		}
	}
	s.logger.Log(event)
}
