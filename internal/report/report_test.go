package report_test

import (
	"bytes"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"

	"github.com/kubev2v/task-scheduler/internal/models"
	"github.com/kubev2v/task-scheduler/internal/report"
)

var _ = Describe("Write", func() {
	var (
		t0      time.Time
		records []models.StatisticsRecord
	)

	BeforeEach(func() {
		t0 = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
		records = []models.StatisticsRecord{
			{SnapshotID: "b", TakenAt: t0.Add(time.Minute), Pool: "main", Submitted: 4, Completed: 3, Failed: 1,
				CountsByTaskName: map[string]uint64{"ocr": 3, "io": 1}},
			{SnapshotID: "b", TakenAt: t0.Add(time.Minute), Pool: "io", Submitted: 2, Completed: 2},
			{SnapshotID: "a", TakenAt: t0, Pool: "main", Submitted: 1, Completed: 1},
		}
	})

	open := func(buf *bytes.Buffer) *excelize.File {
		f, err := excelize.OpenReader(buf)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(f.Close)
		return f
	}

	It("should write one history row per record", func() {
		var buf bytes.Buffer
		Expect(report.Write(&buf, records)).To(Succeed())

		rows, err := open(&buf).GetRows(report.HistorySheet)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(4))
		Expect(rows[0][0]).To(Equal("Snapshot"))
		Expect(rows[1][2]).To(Equal("main"))
		Expect(rows[1][3]).To(Equal("4"))
		Expect(rows[1][10]).To(Equal("0.75"))
	})

	It("should summarize the latest record of each pool", func() {
		var buf bytes.Buffer
		Expect(report.Write(&buf, records)).To(Succeed())

		f := open(&buf)
		Expect(f.GetSheetName(f.GetActiveSheetIndex())).To(Equal(report.SummarySheet))
		rows, err := f.GetRows(report.SummarySheet)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(3))
		Expect(rows[1][0]).To(Equal("io"))
		Expect(rows[2][0]).To(Equal("main"))
		Expect(rows[2][2]).To(Equal("4"))
		Expect(rows[2][7]).To(Equal("ocr"))
	})

	It("should write headers only when there is no history", func() {
		var buf bytes.Buffer
		Expect(report.Write(&buf, nil)).To(Succeed())

		rows, err := open(&buf).GetRows(report.HistorySheet)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(1))
	})
})

var _ = Describe("Latest", func() {
	It("should keep the newest record per pool", func() {
		t0 := time.Now()
		latest := report.Latest([]models.StatisticsRecord{
			{Pool: "main", TakenAt: t0, Submitted: 1},
			{Pool: "main", TakenAt: t0.Add(time.Second), Submitted: 2},
		})
		Expect(latest).To(HaveLen(1))
		Expect(latest[0].Submitted).To(Equal(uint64(2)))
	})
})
