package imaging

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/deducto/receipt-scanner/internal/common"
)

var _ = Describe("NewPreprocessor", func() {
	It("fills in the tuning defaults", func() {
		p := NewPreprocessor(Config{}, nil, nil)
		Expect(p.cfg.DeskewMinAngle).To(Equal(5.0))
		Expect(p.cfg.CLAHEClipLimit).To(Equal(2.0))
		Expect(p.cfg.CLAHETileSize).To(Equal(8))
		Expect(p.cfg.AdaptiveBlock).To(Equal(31))
		Expect(p.cfg.AdaptiveC).To(Equal(float32(10)))
	})

	It("forces the adaptive threshold window to an odd size", func() {
		p := NewPreprocessor(Config{AdaptiveBlock: 20}, nil, nil)
		Expect(p.cfg.AdaptiveBlock % 2).To(Equal(1))
	})

	It("keeps explicit settings", func() {
		p := NewPreprocessor(Config{DeskewMinAngle: 2.5, MorphCleanup: true}, nil, nil)
		Expect(p.cfg.DeskewMinAngle).To(Equal(2.5))
		Expect(p.cfg.MorphCleanup).To(BeTrue())
	})
})

var _ = Describe("Process", func() {
	It("fails with the load code for a missing file", func() {
		p := NewPreprocessor(Config{}, nil, nil)
		_, err := p.Process(context.Background(), "/nonexistent/receipt.jpg")
		Expect(err).To(HaveOccurred())
		Expect(common.HasCode(err, common.CodeImageLoad)).To(BeTrue())
	})

	It("honors an already-canceled context", func() {
		p := NewPreprocessor(Config{}, nil, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := p.Process(ctx, "whatever.jpg")
		Expect(err).To(MatchError(context.Canceled))
	})
})
