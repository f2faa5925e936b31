package storage_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/nkaumov/kurs-zakat/internal"
	"github.com/nkaumov/kurs-zakat/internal/storage"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestStorage(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Storage Suite")
}

// stubS3 keeps objects in memory; unimplemented methods panic through the
// embedded nil interface.
type stubS3 struct {
	s3iface.S3API
	objects map[string][]byte
}

func (s *stubS3) PutObject(in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	s.objects[aws.StringValue(in.Key)] = b
	return &s3.PutObjectOutput{}, nil
}

func (s *stubS3) GetObject(in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
	b, ok := s.objects[aws.StringValue(in.Key)]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "missing", nil)
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(b)),
		ContentLength: aws.Int64(int64(len(b))),
		ContentType:   aws.String("text/csv"),
	}, nil
}

func (s *stubS3) ListObjectsV2Pages(in *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool) error {
	page := &s3.ListObjectsV2Output{}
	for k := range s.objects {
		if strings.HasPrefix(k, aws.StringValue(in.Prefix)) {
			page.Contents = append(page.Contents, &s3.Object{Key: aws.String(k)})
		}
	}
	fn(page, true)
	return nil
}

func (s *stubS3) DeleteObject(in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
	delete(s.objects, aws.StringValue(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

var _ = Describe("Storage", func() {
	Describe("New", func() {
		It("should return nil when archiving is disabled", func() {
			p, err := storage.New(internal.StorageConfig{Provider: "none"})
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(BeNil())
		})

		It("should build a local provider", func() {
			p, err := storage.New(internal.StorageConfig{Provider: "local", LocalDir: GinkgoT().TempDir()})
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(BeAssignableToTypeOf(&storage.LocalProvider{}))
		})

		It("should reject unknown providers", func() {
			_, err := storage.New(internal.StorageConfig{Provider: "ftp"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("LocalProvider", func() {
		var p *storage.LocalProvider

		BeforeEach(func() {
			var err error
			p, err = storage.NewLocalProvider(GinkgoT().TempDir())
			Expect(err).NotTo(HaveOccurred())
		})

		It("should round trip an object", func() {
			Expect(p.Put("reports/hours_3_2024.csv", strings.NewReader("a;b\n"), "text/csv")).To(Succeed())

			obj, err := p.Get("reports/hours_3_2024.csv")
			Expect(err).NotTo(HaveOccurred())
			defer obj.Body.Close()
			body, _ := io.ReadAll(obj.Body)
			Expect(string(body)).To(Equal("a;b\n"))
			Expect(obj.ContentType).To(ContainSubstring("text/csv"))
		})

		It("should list keys under a prefix in order", func() {
			Expect(p.Put("reports/hours_4_2024.csv", strings.NewReader("x"), "text/csv")).To(Succeed())
			Expect(p.Put("reports/hours_3_2024.csv", strings.NewReader("x"), "text/csv")).To(Succeed())
			Expect(p.Put("other/file.txt", strings.NewReader("x"), "text/plain")).To(Succeed())

			keys, err := p.List("reports/")
			Expect(err).NotTo(HaveOccurred())
			Expect(keys).To(Equal([]string{"reports/hours_3_2024.csv", "reports/hours_4_2024.csv"}))
		})

		It("should keep keys inside the root", func() {
			Expect(p.Put("../../escape.csv", strings.NewReader("x"), "text/csv")).To(Succeed())

			keys, err := p.List("")
			Expect(err).NotTo(HaveOccurred())
			Expect(keys).To(Equal([]string{"escape.csv"}))
		})

		It("should report missing objects", func() {
			_, err := p.Get("reports/nope.csv")
			Expect(err).To(MatchError(storage.ErrObjectNotFound))
		})

		It("should delete objects idempotently", func() {
			Expect(p.Put("reports/a.csv", strings.NewReader("x"), "text/csv")).To(Succeed())
			Expect(p.Delete("reports/a.csv")).To(Succeed())
			Expect(p.Delete("reports/a.csv")).To(Succeed())
		})
	})

	Describe("S3Provider", func() {
		var (
			api *stubS3
			p   *storage.S3Provider
		)

		BeforeEach(func() {
			api = &stubS3{objects: map[string][]byte{}}
			p = storage.NewS3ProviderWithAPI(api, "archive")
		})

		It("should put, list and get objects", func() {
			Expect(p.Put("reports/requests_6_2024.csv", strings.NewReader("r"), "text/csv")).To(Succeed())

			keys, err := p.List("reports/")
			Expect(err).NotTo(HaveOccurred())
			Expect(keys).To(ConsistOf("reports/requests_6_2024.csv"))

			obj, err := p.Get("reports/requests_6_2024.csv")
			Expect(err).NotTo(HaveOccurred())
			body, _ := io.ReadAll(obj.Body)
			Expect(string(body)).To(Equal("r"))
		})

		It("should map NoSuchKey to ErrObjectNotFound", func() {
			_, err := p.Get("reports/missing.csv")
			Expect(err).To(MatchError(storage.ErrObjectNotFound))
		})
	})
})
