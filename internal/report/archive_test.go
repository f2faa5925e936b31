package report_test

import (
	"context"
	"io"

	"github.com/nkaumov/kurs-zakat/internal"
	"github.com/nkaumov/kurs-zakat/internal/core/events"
	"github.com/nkaumov/kurs-zakat/internal/report"
	"github.com/nkaumov/kurs-zakat/internal/storage"
	"github.com/nkaumov/kurs-zakat/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Report Archive", func() {
	var (
		f       *fixture
		store   *storage.LocalProvider
		archive *report.Archive
		bus     *events.EventBus
	)

	BeforeEach(func() {
		f = newFixture()
		var err error
		store, err = storage.NewLocalProvider(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())
		archive = report.NewArchive(store, f.service, "reports", logger.Discard())
		bus = events.NewEventBus(logger.Discard())
		archive.Subscribe(bus)
	})

	It("should store the hours report when a schedule closes", func() {
		anna := f.employee("Anna")
		march := f.schedule(3, 2024)
		f.hours(march, anna, 1, 8)

		Expect(bus.PublishSync(context.Background(), events.NewScheduleClosedEvent(march, 3, 2024, 1))).To(Succeed())

		names, err := archive.List()
		Expect(err).NotTo(HaveOccurred())
		Expect(names).To(Equal([]string{"hours_3_2024.csv"}))

		obj, err := archive.Open("hours_3_2024.csv")
		Expect(err).NotTo(HaveOccurred())
		defer obj.Body.Close()
		body, err := io.ReadAll(obj.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(HavePrefix("employee_id;full_name;total_hours\n"))
		Expect(string(body)).To(ContainSubstring("Anna;8"))
	})

	It("should overwrite the archive when the same schedule closes again", func() {
		anna := f.employee("Anna")
		march := f.schedule(3, 2024)
		f.hours(march, anna, 1, 8)
		ctx := context.Background()

		Expect(archive.HandleScheduleClosed(ctx, events.NewScheduleClosedEvent(march, 3, 2024, 1))).To(Succeed())
		Expect(archive.HandleScheduleClosed(ctx, events.NewScheduleClosedEvent(march, 3, 2024, 1))).To(Succeed())

		names, err := archive.List()
		Expect(err).NotTo(HaveOccurred())
		Expect(names).To(HaveLen(1))
	})

	It("should reject names outside the archive", func() {
		for _, name := range []string{"", "../secrets.csv", "nested/hours_3_2024.csv", "hours_3_2024.txt"} {
			_, err := archive.Open(name)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue(), name)
			Expect(appErr.Code).To(Equal(internal.ErrCodeReportNotFound))
		}
	})

	It("should report a missing archive file", func() {
		_, err := archive.Open("hours_1_2020.csv")
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeReportNotFound))
	})
})
