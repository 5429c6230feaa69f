package common

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AppError", func() {
	It("formats code, message, and cause", func() {
		err := NewAppError(CodeImageLoad, "cannot read image", errors.New("no such file"))
		Expect(err.Error()).To(Equal("IMAGE_LOAD: cannot read image: no such file"))
	})

	It("formats without a cause", func() {
		err := NewAppError(CodeNoText, "blank page", nil)
		Expect(err.Error()).To(Equal("NO_TEXT: blank page"))
	})

	It("unwraps to its cause", func() {
		cause := errors.New("no such file")
		err := NewAppError(CodeImageLoad, "cannot read image", cause)
		Expect(errors.Is(err, cause)).To(BeTrue())
	})
})

var _ = Describe("HasCode", func() {
	It("matches a bare AppError", func() {
		err := NewAppError(CodeImageLoad, "cannot read image", nil)
		Expect(HasCode(err, CodeImageLoad)).To(BeTrue())
		Expect(HasCode(err, CodeNoText)).To(BeFalse())
	})

	It("finds the code through wrapping", func() {
		inner := NewAppError(CodeImageLoad, "cannot read image", nil)
		wrapped := fmt.Errorf("preprocess: %w", inner)
		Expect(HasCode(wrapped, CodeImageLoad)).To(BeTrue())
	})

	It("is false for plain errors and nil", func() {
		Expect(HasCode(errors.New("boom"), CodeImageLoad)).To(BeFalse())
		Expect(HasCode(nil, CodeImageLoad)).To(BeFalse())
	})
})

var _ = Describe("WrapError", func() {
	It("returns nil for nil", func() {
		Expect(WrapError(nil, "context")).To(Succeed())
	})

	It("prefixes and preserves the chain", func() {
		cause := errors.New("boom")
		err := WrapError(cause, "saving record")
		Expect(err.Error()).To(Equal("saving record: boom"))
		Expect(errors.Is(err, cause)).To(BeTrue())
	})
})
