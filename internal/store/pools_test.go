package store_test

import (
	"context"
	"database/sql"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/task-scheduler/internal/models"
	"github.com/kubev2v/task-scheduler/internal/store"
	srvErrors "github.com/kubev2v/task-scheduler/pkg/errors"
)

var _ = Describe("PoolStore", func() {
	var (
		ctx context.Context
		s   *store.Store
		db  *sql.DB
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())

		s = store.NewStore(db)
		Expect(s.Migrate(ctx)).To(Succeed())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Context("Get", func() {
		// Given an empty pool store
		// When we get a pool
		// Then it should return PoolNotFoundError
		It("should return PoolNotFoundError when the pool was never saved", func() {
			// Act
			_, err := s.Pools().Get(ctx, "ocr")

			// Assert
			Expect(err).To(HaveOccurred())
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})

		It("should return the saved definition", func() {
			// Arrange
			Expect(s.Pools().Save(ctx, models.PoolDefinition{Name: "ocr", Workers: 3, Ordering: "priority"})).To(Succeed())

			// Act
			def, err := s.Pools().Get(ctx, "ocr")

			// Assert
			Expect(err).NotTo(HaveOccurred())
			Expect(def.Workers).To(Equal(3))
			Expect(def.Ordering).To(Equal("priority"))
			Expect(def.CreatedAt.IsZero()).To(BeFalse())
		})
	})

	Context("Save", func() {
		// Given a saved pool
		// When we save it again with another size
		// Then the row is updated in place
		It("should upsert", func() {
			Expect(s.Pools().Save(ctx, models.PoolDefinition{Name: "ocr", Workers: 3, Ordering: "fifo"})).To(Succeed())
			Expect(s.Pools().Save(ctx, models.PoolDefinition{Name: "ocr", Workers: 6, Ordering: "fifo"})).To(Succeed())

			defs, err := s.Pools().List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(defs).To(HaveLen(1))
			Expect(defs[0].Workers).To(Equal(6))
		})
	})

	Context("Delete", func() {
		It("should remove the pool and ignore unknown names", func() {
			Expect(s.Pools().Save(ctx, models.PoolDefinition{Name: "b", Workers: 1, Ordering: "fifo"})).To(Succeed())
			Expect(s.Pools().Save(ctx, models.PoolDefinition{Name: "a", Workers: 1, Ordering: "fifo"})).To(Succeed())

			Expect(s.Pools().Delete(ctx, "b")).To(Succeed())
			Expect(s.Pools().Delete(ctx, "missing")).To(Succeed())

			defs, err := s.Pools().List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(defs).To(HaveLen(1))
			Expect(defs[0].Name).To(Equal("a"))
		})
	})
})
