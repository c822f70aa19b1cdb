// Command alpc-inspect builds and dissects ALPC message attribute buffers.
//
// It loads a YAML scenario describing the attributes to attach, builds an
// attribute set against the runtime layout allocator and an in-process
// heap, runs the initialize pass, and prints the resulting buffer layout
// and decoded attributes. The full lifecycle event stream can be captured
// to a CBOR file for offline analysis.
//
// Usage:
//
//	alpc-inspect [flags]
//
// Flags:
//
//	-scenario string   Scenario file path (YAML)
//	-capture string    Write lifecycle events to this CBOR file
//	-events string     Decode and print a previously captured CBOR file
//	-interactive       Enable interactive command mode
//	-verbose           Log lifecycle events to the console
//
// Examples:
//
//	# Inspect a scenario
//	alpc-inspect -scenario testdata/security.yaml
//
//	# Capture the event stream while inspecting
//	alpc-inspect -scenario testdata/security.yaml -capture out.alog
//
//	# Replay a captured event stream
//	alpc-inspect -events out.alog
//
//	# Drive the lifecycle by hand
//	alpc-inspect -scenario testdata/security.yaml -interactive
//
// Interactive Commands:
//
//	build      - Build the set from the loaded scenario
//	show       - Show the buffer layout and decoded attributes
//	rebuild    - Run the rebuild pass
//	release    - Run the release pass against a loopback port
//	close      - Dispose the set
//	quit       - Exit
//
// Scenario format:
//
//	security:
//	  flags: 0x20000
//	  context_handle: 42
//	  qos:
//	    impersonation: impersonate
//	    dynamic_tracking: true
//	    effective_only: false
//	context:
//	  port_context: 0x1234
//	view:
//	  size: 65536
//	token: true
//	handle:
//	  handle: 4
//	  desired_access: 0x1f0003
//	work_on_behalf:
//	  thread_id: 99
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"gopkg.in/yaml.v3"

	"github.com/shubham0d/sandbox-attacksurface-analysis-tools/pkg/alpc"
	"github.com/shubham0d/sandbox-attacksurface-analysis-tools/pkg/log"
	"github.com/shubham0d/sandbox-attacksurface-analysis-tools/pkg/native"
)

type scenario struct {
	Security     *securityConfig     `yaml:"security"`
	Context      *contextConfig      `yaml:"context"`
	View         *viewConfig         `yaml:"view"`
	Token        bool                `yaml:"token"`
	Handle       *handleConfig       `yaml:"handle"`
	WorkOnBehalf *workOnBehalfConfig `yaml:"work_on_behalf"`
}

type securityConfig struct {
	Flags         uint32     `yaml:"flags"`
	ContextHandle uint64     `yaml:"context_handle"`
	QoS           *qosConfig `yaml:"qos"`
}

type qosConfig struct {
	Impersonation   string `yaml:"impersonation"`
	DynamicTracking bool   `yaml:"dynamic_tracking"`
	EffectiveOnly   bool   `yaml:"effective_only"`
}

type contextConfig struct {
	PortContext    uint64 `yaml:"port_context"`
	MessageContext uint64 `yaml:"message_context"`
}

type viewConfig struct {
	Flags         uint32 `yaml:"flags"`
	SectionHandle uint64 `yaml:"section_handle"`
	Base          uint64 `yaml:"base"`
	Size          uint64 `yaml:"size"`
}

type handleConfig struct {
	Flags         uint32 `yaml:"flags"`
	Handle        uint32 `yaml:"handle"`
	ObjectType    uint32 `yaml:"object_type"`
	DesiredAccess uint32 `yaml:"desired_access"`
}

type workOnBehalfConfig struct {
	ThreadID              uint32 `yaml:"thread_id"`
	ThreadCreationTimeLow uint32 `yaml:"thread_creation_time_low"`
}

func impersonationLevel(name string) (alpc.ImpersonationLevel, error) {
	switch strings.ToLower(name) {
	case "", "anonymous":
		return alpc.ImpersonationAnonymous, nil
	case "identification":
		return alpc.ImpersonationIdentification, nil
	case "impersonate", "impersonation":
		return alpc.ImpersonationImpersonate, nil
	case "delegate", "delegation":
		return alpc.ImpersonationDelegate, nil
	default:
		return 0, fmt.Errorf("unknown impersonation level %q", name)
	}
}

// attributes turns the scenario into concrete attribute instances.
func (s *scenario) attributes() ([]alpc.MessageAttribute, error) {
	var attrs []alpc.MessageAttribute
	if s.Security != nil {
		attr := &alpc.SecurityAttribute{
			Flags:         s.Security.Flags,
			ContextHandle: s.Security.ContextHandle,
		}
		if q := s.Security.QoS; q != nil {
			level, err := impersonationLevel(q.Impersonation)
			if err != nil {
				return nil, err
			}
			tracking := alpc.SecurityStaticTracking
			if q.DynamicTracking {
				tracking = alpc.SecurityDynamicTracking
			}
			attr.QoS = &alpc.SecurityQualityOfService{
				ImpersonationLevel:  level,
				ContextTrackingMode: tracking,
				EffectiveOnly:       q.EffectiveOnly,
			}
		}
		attrs = append(attrs, attr)
	}
	if s.Context != nil {
		attrs = append(attrs, &alpc.ContextAttribute{
			PortContext:    s.Context.PortContext,
			MessageContext: s.Context.MessageContext,
		})
	}
	if s.View != nil {
		attrs = append(attrs, &alpc.DataViewAttribute{
			Flags:         s.View.Flags,
			SectionHandle: s.View.SectionHandle,
			ViewBase:      s.View.Base,
			ViewSize:      s.View.Size,
		})
	}
	if s.Token {
		attrs = append(attrs, &alpc.TokenAttribute{})
	}
	if s.Handle != nil {
		attrs = append(attrs, &alpc.HandleAttribute{
			Flags:         s.Handle.Flags,
			Handle:        s.Handle.Handle,
			ObjectType:    s.Handle.ObjectType,
			DesiredAccess: s.Handle.DesiredAccess,
		})
	}
	if s.WorkOnBehalf != nil {
		attrs = append(attrs, &alpc.WorkOnBehalfAttribute{
			ThreadID:              s.WorkOnBehalf.ThreadID,
			ThreadCreationTimeLow: s.WorkOnBehalf.ThreadCreationTimeLow,
		})
	}
	return attrs, nil
}

func loadScenario(path string) (*scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return &s, nil
}

// loopbackPort is the endpoint release runs against: it just reports
// what a real port would have torn down.
type loopbackPort struct{}

func (loopbackPort) Handle() uint64 { return 0x4 }

func (loopbackPort) ReleaseView(viewBase uint64) error {
	fmt.Printf("  released view at 0x%x\n", viewBase)
	return nil
}

func (loopbackPort) CloseHandle(handle uint64) error {
	fmt.Printf("  closed handle 0x%x\n", handle)
	return nil
}

// session holds the state the tool drives: one heap, one set at a time.
type session struct {
	heap     *native.Heap
	scenario *scenario
	set      *alpc.AttributeSet
	logger   log.Logger
}

func (s *session) build() error {
	if s.set != nil {
		return fmt.Errorf("a set is already built; close it first")
	}
	attrs, err := s.scenario.attributes()
	if err != nil {
		return err
	}
	set, err := alpc.NewAttributeSet(alpc.RuntimeAllocator{}, s.heap, attrs,
		alpc.WithInitialize(), alpc.WithLogger(s.logger))
	if err != nil {
		return err
	}
	s.set = set
	fmt.Printf("built set %s: flags=%s buffer=%d bytes\n",
		set.OperationID(), set.Flags(), set.Buffer().Len())
	return nil
}

func (s *session) show() error {
	if s.set == nil {
		return fmt.Errorf("no set built")
	}
	buf := s.set.Buffer()
	fmt.Printf("operation %s\n", s.set.OperationID())
	fmt.Printf("flags:     %s\n", buf.Flags())
	fmt.Printf("length:    %d bytes\n", buf.Len())
	fmt.Printf("auxiliary: %d allocation(s)\n", buf.AuxCount())
	for _, flag := range []alpc.AttributeFlag{
		alpc.AttributeSecurity, alpc.AttributeView, alpc.AttributeContext,
		alpc.AttributeHandle, alpc.AttributeToken, alpc.AttributeDirect,
		alpc.AttributeWorkOnBehalf,
	} {
		addr := buf.AttributeAddress(flag)
		if addr == 0 {
			continue
		}
		fmt.Printf("  %-14s @ 0x%x\n", flag, addr)
		if attr, ok := s.set.Attribute(flag); ok {
			fmt.Printf("    %+v\n", attr)
		}
	}
	return nil
}

func (s *session) rebuild() error {
	if s.set == nil {
		return fmt.Errorf("no set built")
	}
	if err := s.set.Rebuild(); err != nil {
		return err
	}
	fmt.Println("rebuild pass complete")
	return nil
}

func (s *session) release() error {
	if s.set == nil {
		return fmt.Errorf("no set built")
	}
	if err := s.set.Release(loopbackPort{}); err != nil {
		return err
	}
	fmt.Println("release pass complete")
	return nil
}

func (s *session) close() error {
	if s.set == nil {
		return fmt.Errorf("no set built")
	}
	err := s.set.Close()
	s.set = nil
	if err != nil {
		return err
	}
	fmt.Printf("set disposed, %d live allocation(s) remain\n", s.heap.Live())
	return nil
}

func runOnce(s *session) error {
	if err := s.build(); err != nil {
		return err
	}
	if err := s.show(); err != nil {
		return err
	}
	if err := s.rebuild(); err != nil {
		return err
	}
	if err := s.release(); err != nil {
		return err
	}
	if err := s.close(); err != nil {
		return err
	}
	if live := s.heap.Live(); live != 0 {
		return fmt.Errorf("leak: %d allocation(s) still live after close", live)
	}
	return nil
}

func runInteractive(s *session) error {
	rl, err := readline.New("alpc> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			return nil
		}
		var cmdErr error
		switch strings.TrimSpace(line) {
		case "":
		case "build":
			cmdErr = s.build()
		case "show":
			cmdErr = s.show()
		case "rebuild":
			cmdErr = s.rebuild()
		case "release":
			cmdErr = s.release()
		case "close":
			cmdErr = s.close()
		case "quit", "exit":
			return nil
		case "help":
			fmt.Println("commands: build show rebuild release close quit")
		default:
			cmdErr = fmt.Errorf("unknown command %q (try help)", strings.TrimSpace(line))
		}
		if cmdErr != nil {
			fmt.Printf("error: %v\n", cmdErr)
		}
	}
}

func replayEvents(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	events, err := log.ReadStream(f)
	if err != nil {
		return err
	}
	for _, e := range events {
		line := fmt.Sprintf("%s %-10s op=%s flags=%s len=%d aux=%d",
			e.Timestamp.Format("15:04:05.000000"), e.Kind, e.OperationID,
			alpc.AttributeFlag(e.Flags), e.BufferLen, e.AuxCount)
		if e.Error != "" {
			line += " error=" + e.Error
		}
		fmt.Println(line)
	}
	fmt.Printf("%d event(s)\n", len(events))
	return nil
}

func run() error {
	scenarioPath := flag.String("scenario", "", "scenario file path (YAML)")
	capturePath := flag.String("capture", "", "write lifecycle events to this CBOR file")
	eventsPath := flag.String("events", "", "decode and print a captured CBOR file")
	interactive := flag.Bool("interactive", false, "enable interactive command mode")
	verbose := flag.Bool("verbose", false, "log lifecycle events to the console")
	flag.Parse()

	if *eventsPath != "" {
		return replayEvents(*eventsPath)
	}
	if *scenarioPath == "" {
		return fmt.Errorf("a -scenario file is required (or -events to replay a capture)")
	}

	scen, err := loadScenario(*scenarioPath)
	if err != nil {
		return err
	}

	var loggers log.MultiLogger
	if *verbose {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		loggers = append(loggers, log.NewSlogAdapter(slog.New(handler)))
	}
	if *capturePath != "" {
		f, err := os.Create(*capturePath)
		if err != nil {
			return err
		}
		defer f.Close()
		loggers = append(loggers, log.NewStreamLogger(f))
	}

	s := &session{heap: native.NewHeap(), scenario: scen, logger: loggers}
	if *interactive {
		return runInteractive(s)
	}
	return runOnce(s)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "alpc-inspect: %v\n", err)
		os.Exit(1)
	}
}
