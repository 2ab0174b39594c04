package extraction

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const sampleReceipt = `SUPERMERCATO ROSSI
Via Garibaldi 12, Milano
P.IVA 01234567890
DOCUMENTO COMMERCIALE
PANE 1,20
LATTE 1,50
SUBTOTALE 2,70
TOTALE EUR 2,70
CONTANTI 5,00
RESTO 2,30
15/03/2024 10:42`

var _ = Describe("Extract", func() {
	var (
		text   string
		result *ScanResult
	)

	JustBeforeEach(func() {
		result = Extract(text)
	})

	When("the text is empty", func() {
		BeforeEach(func() {
			text = ""
		})

		It("should leave every field absent", func() {
			Expect(result.Amount.Valid).To(BeFalse())
			Expect(result.Date).To(BeEmpty())
			Expect(result.Merchant).To(BeEmpty())
		})

		It("should have zero confidence", func() {
			Expect(result.Confidence).To(Equal(0))
		})

		It("should serialize absent fields as null", func() {
			data, err := json.Marshal(result)
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(MatchJSON(`{"amount":null,"date":null,"merchant":null,"confidence":0,"rawText":""}`))
		})
	})

	When("the receipt has every field", func() {
		BeforeEach(func() {
			text = sampleReceipt
		})

		It("should extract the total", func() {
			Expect(result.Amount.Decimal.StringFixed(2)).To(Equal("2.70"))
		})

		It("should extract the date", func() {
			Expect(result.Date).To(Equal("2024-03-15"))
		})

		It("should extract the merchant", func() {
			Expect(result.Merchant).To(Equal("SUPERMERCATO ROSSI"))
		})

		It("should cap confidence at 100", func() {
			Expect(result.Confidence).To(Equal(100))
		})

		It("should keep the raw text", func() {
			Expect(result.RawText).To(Equal(sampleReceipt))
		})

		It("should serialize the amount with two decimals", func() {
			data, err := json.Marshal(result)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`"amount":2.70`))
			Expect(string(data)).To(ContainSubstring(`"date":"2024-03-15"`))
		})

		It("should be idempotent", func() {
			first, err := json.Marshal(result)
			Expect(err).NotTo(HaveOccurred())
			second, err := json.Marshal(Extract(text))
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
		})
	})

	When("only an amount is present", func() {
		BeforeEach(func() {
			text = "TOTALE EUR 12,50"
		})

		It("should score the amount alone", func() {
			Expect(result.Confidence).To(Equal(40))
		})
	})
})
