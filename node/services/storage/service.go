package storage

import (
	"receiver/kernel"
	"receiver/node/logger"
)

const (
	// SelfTestFile is written once at boot.
	SelfTestFile = "file.txt"
	// JournalFile receives journal entries, one per line.
	JournalFile = "rx.log"
)

// SelfTestPayload is appended to SelfTestFile at boot.
var SelfTestPayload = []byte("Hello World!")

// MaxEntryBytes is the largest journal entry.
const MaxEntryBytes = 255

// Entry is a journal line, stored inline so it can travel through a
// kernel.Queue without allocation.
type Entry struct {
	Len  uint8
	Data [MaxEntryBytes]byte
}

// NewEntry copies b into an entry, truncating to MaxEntryBytes.
func NewEntry(b []byte) Entry {
	var e Entry
	e.Len = uint8(copy(e.Data[:], b))
	return e
}

func (e *Entry) Bytes() []byte { return e.Data[:e.Len] }

// Line is the entry as written to JournalFile, newline terminated.
func (e *Entry) Line() []byte {
	line := make([]byte, 0, int(e.Len)+1)
	return append(append(line, e.Bytes()...), '\n')
}

// Report is the outcome of the boot pass.
type Report struct {
	Capacity uint64
	Written  int
	Err      error
}

type phase uint8

const (
	phaseCapacity phase = iota
	phaseSelfTest
	phaseJournal
	phaseIdle
)

// Service queries the card, appends the self-test payload and, when a
// journal queue is attached, keeps appending its entries. Without a journal
// it exits after the boot pass. A failed capacity query leaves the task idle
// with no further card access.
type Service struct {
	vm      VolumeManager
	journal *kernel.Queue[Entry]
	log     *logger.Logger

	phase    phase
	capacity kernel.Pending[uint64]
	write    kernel.Pending[struct{}]

	report   Report
	reported bool

	entry    Entry
	haveItem bool
	appended uint32
	failed   uint32
}

func New(vm VolumeManager, journal *kernel.Queue[Entry], log *logger.Logger) *Service {
	return &Service{vm: vm, journal: journal, log: log}
}

// Report returns the boot pass outcome and whether it has finished.
func (s *Service) Report() (Report, bool) { return s.report, s.reported }

// Appended returns the number of journal entries written.
func (s *Service) Appended() uint32 { return s.appended }

func (s *Service) Step(ctx *kernel.Context) {
	for {
		switch s.phase {
		case phaseCapacity:
			n, done, err := s.capacity.Poll(ctx, s.vm.Capacity)
			if !done {
				return
			}
			if err != nil {
				s.finish(Report{Err: err})
				s.log.Errorf("Could not determine size of SD: %v", err)
				s.phase = phaseIdle
				continue
			}
			s.report.Capacity = n
			s.log.Infof("SD size: %d", n)
			s.phase = phaseSelfTest

		case phaseSelfTest:
			_, done, err := s.write.Poll(ctx, func() (struct{}, error) {
				return struct{}{}, WriteOnce(s.vm, SelfTestFile, SelfTestPayload)
			})
			if !done {
				return
			}
			r := Report{Capacity: s.report.Capacity, Err: err}
			if err != nil {
				s.log.Errorf("Could not write to file: %v", err)
			} else {
				r.Written = len(SelfTestPayload)
				s.log.Infof("Successfully wrote to file")
			}
			s.finish(r)
			if s.journal == nil {
				ctx.Exit()
				return
			}
			s.phase = phaseJournal

		case phaseJournal:
			if !s.haveItem {
				e, ok := s.journal.Recv(ctx)
				if !ok {
					return
				}
				s.entry, s.haveItem = e, true
			}
			_, done, err := s.write.Poll(ctx, func() (struct{}, error) {
				return struct{}{}, WriteOnce(s.vm, JournalFile, s.entry.Line())
			})
			if !done {
				return
			}
			s.haveItem = false
			if err != nil {
				s.failed++
				s.log.Warnf("journal append: %v", err)
				continue
			}
			s.appended++

		case phaseIdle:
			ctx.Park()
			return
		}
	}
}

func (s *Service) finish(r Report) {
	s.report = r
	s.reported = true
}
