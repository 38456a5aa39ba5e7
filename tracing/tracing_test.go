package tracing

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/elastic/arbitration"
	"github.com/sarchlab/elastic/bitvec"
	"github.com/sarchlab/elastic/handshake"
	"github.com/sarchlab/elastic/sim"
)

func transfer(channel string, cycle uint64) handshake.Transfer {
	return handshake.Transfer{
		Channel: channel,
		Cycle:   sim.VTimeInCycle(cycle),
		Data:    bitvec.FromUint64(8, cycle),
	}
}

var _ = Describe("CollectTrace", func() {
	var (
		engine *sim.SerialEngine
		ch     *handshake.Channel
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		ch = handshake.MakeBuilder().WithEngine(engine).WithWidth(8).Build("Ch")
	})

	It("should not attach the same tracer twice", func() {
		t := NewCountingTracer(nil)

		CollectTrace(ch, t)

		Expect(func() { CollectTrace(ch, t) }).To(Panic())
	})

	It("should attach to channels and arbiters only", func() {
		arbitration.MakeBuilder().
			WithEngine(engine).
			WithNumRequesters(2).
			Build("Arb")
		handshake.MakeSinkBuilder().WithEngine(engine).WithInput(ch).Build("Sink")

		n := CollectTraceFromEngine(engine, NewCountingTracer(nil))

		Expect(n).To(Equal(2))
	})

	It("should count transfers and stalls of a running channel", func() {
		counter := NewCountingTracer(nil)
		stalls := NewStallTracer(nil)
		CollectTrace(ch, counter)
		CollectTrace(ch, stalls)

		ch.Valid().SetBit(true)
		ch.Data().SetUint64(7)
		for i := 0; i < 2; i++ {
			_, err := engine.Step()
			Expect(err).NotTo(HaveOccurred())
		}

		ch.Ready().SetBit(true)
		_, err := engine.Step()
		Expect(err).NotTo(HaveOccurred())

		s := counter.Stats("Ch")
		Expect(counter.Channels()).To(Equal([]string{"Ch"}))
		Expect(s.Transfers).To(Equal(uint64(1)))
		Expect(s.Stalls).To(Equal(uint64(2)))
		Expect(s.FirstCycle).To(Equal(sim.VTimeInCycle(0)))
		Expect(s.LastCycle).To(Equal(sim.VTimeInCycle(2)))
		Expect(s.Throughput()).To(BeNumerically("~", 1.0/3.0))

		Expect(stalls.NumEpisodes("Ch")).To(Equal(uint64(1)))
		Expect(stalls.LongestStall("Ch")).To(Equal(uint64(2)))
	})
})

var _ = Describe("CountingTracer", func() {
	It("should count grants per requester", func() {
		t := NewCountingTracer(nil)

		t.Grant(arbitration.Decision{Arbiter: "Arb", Grant: bitvec.OneHot(4, 2)})
		t.Grant(arbitration.Decision{Arbiter: "Arb", Grant: bitvec.OneHot(4, 2)})
		t.Grant(arbitration.Decision{Arbiter: "Arb", Grant: bitvec.OneHot(4, 0)})
		t.Grant(arbitration.Decision{Arbiter: "Arb", Grant: bitvec.New(4)})

		Expect(t.Grants("Arb")).To(Equal([]uint64{1, 0, 2, 0}))
		Expect(t.Grants("Other")).To(BeEmpty())
	})

	It("should respect the filter", func() {
		t := NewCountingTracer(func(channel string) bool {
			return channel == "A"
		})

		t.Transfer(transfer("A", 1))
		t.Transfer(transfer("B", 1))

		Expect(t.Channels()).To(Equal([]string{"A"}))
		Expect(t.Stats("B").Throughput()).To(BeZero())
	})
})

var _ = Describe("StallTracer", func() {
	It("should split stall episodes at gaps", func() {
		t := NewStallTracer(nil)

		t.Stall(transfer("A", 1))
		t.Stall(transfer("A", 2))
		t.Stall(transfer("A", 5))
		t.Stall(transfer("A", 6))
		t.Stall(transfer("A", 7))
		t.Transfer(transfer("A", 8))

		Expect(t.NumEpisodes("A")).To(Equal(uint64(2)))
		Expect(t.LongestStall("A")).To(Equal(uint64(3)))
		Expect(t.AverageStall("A")).To(BeNumerically("~", 2.5))
	})

	It("should not count open episodes", func() {
		t := NewStallTracer(nil)

		t.Stall(transfer("A", 1))

		Expect(t.NumEpisodes("A")).To(BeZero())
		Expect(t.AverageStall("A")).To(BeZero())
	})
})

var _ = Describe("LogTracer", func() {
	It("should log transfers and grants", func() {
		buf := new(bytes.Buffer)
		logger := zerolog.New(buf).Level(zerolog.DebugLevel)
		t := NewLogTracer(logger, nil, true)

		t.Transfer(transfer("Pipe.Out", 3))
		t.Stall(transfer("Pipe.Out", 4))
		t.Grant(arbitration.Decision{
			Arbiter:  "Arb",
			Requests: bitvec.MustParse("11"),
			Grant:    bitvec.MustParse("01"),
		})

		out := buf.String()
		Expect(out).To(ContainSubstring(`"channel":"Pipe.Out"`))
		Expect(out).To(ContainSubstring(`"message":"transfer"`))
		Expect(out).To(ContainSubstring(`"grant":"01"`))
		Expect(out).NotTo(ContainSubstring(`"message":"stall"`))
	})
})

var _ = Describe("DBTracer", func() {
	var (
		mockCtrl *gomock.Controller
		backend  *MockDataRecorder
		t        *DBTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		backend = NewMockDataRecorder(mockCtrl)

		backend.EXPECT().CreateTable(TransferTable, TransferEntry{})
		backend.EXPECT().CreateTable(GrantTable, GrantEntry{})

		t = NewDBTracer(backend, nil, false)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should record transfers", func() {
		backend.EXPECT().InsertData(TransferTable, TransferEntry{
			Channel: "A",
			Cycle:   3,
			Data:    "00000011",
		})

		t.Transfer(transfer("A", 3))
		t.Stall(transfer("A", 4))
	})

	It("should record grants with the requester index", func() {
		backend.EXPECT().InsertData(GrantTable, GrantEntry{
			Arbiter:   "Arb",
			Cycle:     9,
			Requests:  "0110",
			Grant:     "0100",
			Requester: 2,
		})

		t.Grant(arbitration.Decision{
			Arbiter:  "Arb",
			Cycle:    9,
			Requests: bitvec.MustParse("0110"),
			Grant:    bitvec.MustParse("0100"),
		})
	})

	It("should drop events outside the window", func() {
		t.SetWindow(5, 6)

		backend.EXPECT().InsertData(TransferTable, gomock.Any()).Times(2)

		for i := uint64(0); i < 10; i++ {
			t.Transfer(transfer("A", i))
		}
	})

	It("should flush on terminate", func() {
		backend.EXPECT().Flush()

		t.Terminate()
	})
})
