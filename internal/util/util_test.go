package util_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/task-scheduler/internal/util"
)

var _ = Describe("Util", func() {
	DescribeTable("Round",
		func(in, want float64) {
			Expect(util.Round(in)).To(Equal(want))
		},
		Entry("keeps two decimals", 1.23, 1.23),
		Entry("rounds up", 2.346, 2.35),
		Entry("rounds down", 0.3333, 0.33),
		Entry("zero", 0.0, 0.0),
	)

	It("should return a pointer to a copy", func() {
		v := 3
		p := util.Ptr(v)
		v = 4
		Expect(*p).To(Equal(3))
	})

	It("should return nil for zero values", func() {
		Expect(util.PtrIfNotZero("")).To(BeNil())
		Expect(util.PtrIfNotZero(0)).To(BeNil())
		Expect(*util.PtrIfNotZero("id")).To(Equal("id"))
	})
})
