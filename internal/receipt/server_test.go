package receipt

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/zombor/scan-receipt/internal/scanning"
)

var _ = Describe("Server", func() {
	var (
		scanner     *mockScanner
		service     *Service
		server      *Server
		auth        BasicAuth
		ghttpServer *ghttp.Server
	)

	setupServer := func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
		server = NewServerWithMux(service, auth, http.NewServeMux())
		ghttpServer = ghttp.NewServer()
		ghttpServer.AppendHandlers(server.ServeHTTP)
	}

	scanBody := func(image string) io.Reader {
		data, err := json.Marshal(ScanRequest{Image: image})
		Expect(err).NotTo(HaveOccurred())
		return bytes.NewReader(data)
	}

	validImage := base64.StdEncoding.EncodeToString([]byte("jpeg bytes"))

	post := func(path string, body io.Reader) *http.Response {
		resp, err := http.Post(ghttpServer.URL()+path, "application/json", body)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	decodeError := func(resp *http.Response) ErrorResponse {
		defer resp.Body.Close()
		var envelope ErrorResponse
		Expect(json.NewDecoder(resp.Body).Decode(&envelope)).To(Succeed())
		return envelope
	}

	BeforeEach(func() {
		scanner = newMockScanner()
		service = NewService(scanner)
		auth = BasicAuth{}
		setupServer()
	})

	AfterEach(func() {
		if ghttpServer != nil {
			ghttpServer.Close()
			ghttpServer = nil
		}
	})

	Describe("handleScan", func() {
		When("the receipt is scanned", func() {
			var (
				resp *http.Response
				body map[string]any
			)

			BeforeEach(func() {
				resp = post("/api/scan", scanBody(validImage))
				defer resp.Body.Close()
				Expect(json.NewDecoder(resp.Body).Decode(&body)).To(Succeed())
			})

			It("should return status OK", func() {
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
			})

			It("should set Content-Type to application/json", func() {
				Expect(resp.Header.Get("Content-Type")).To(Equal("application/json"))
			})

			It("should set CORS headers", func() {
				Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("*"))
			})

			It("should tag the response with a request ID", func() {
				Expect(resp.Header.Get("X-Request-Id")).NotTo(BeEmpty())
			})

			It("should return the extracted fields", func() {
				Expect(body).To(HaveKeyWithValue("amount", 12.5))
				Expect(body).To(HaveKeyWithValue("date", "2024-03-15"))
				Expect(body).To(HaveKeyWithValue("merchant", "BAR SPORT"))
				Expect(body).To(HaveKeyWithValue("confidence", float64(100)))
				Expect(body).To(HaveKeyWithValue("rawText", italianReceipt))
			})
		})

		When("posting to the root path", func() {
			It("should scan the receipt", func() {
				resp := post("/", scanBody(validImage))
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
			})
		})

		When("the recognized text has no fields", func() {
			BeforeEach(func() {
				scanner.text = "???"
			})

			It("should return nulls with zero confidence", func() {
				resp := post("/api/scan", scanBody(validImage))
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				data, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(data).To(MatchJSON(`{"amount":null,"date":null,"merchant":null,"confidence":0,"rawText":"???"}`))
			})
		})

		DescribeTable("error envelopes",
			func(scanErr error, image string, status int, code string) {
				scanner.scanErr = scanErr
				resp := post("/api/scan", scanBody(image))
				Expect(resp.StatusCode).To(Equal(status))
				Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("*"))
				Expect(decodeError(resp).Code).To(Equal(code))
			},
			Entry("missing image", nil, "", http.StatusBadRequest, CodeInvalidRequest),
			Entry("invalid base64", nil, "***", http.StatusBadRequest, CodeInvalidRequest),
			Entry("no text detected", scanning.ErrNoTextDetected, validImage, http.StatusUnprocessableEntity, CodeNoTextDetected),
			Entry("credential failure", fmt.Errorf("%w: invalid_grant", scanning.ErrCredentials), validImage, http.StatusBadGateway, CodeAuthError),
			Entry("recognizer failure", errors.New("vision API error"), validImage, http.StatusInternalServerError, CodeProcessingError),
		)

		When("the recognizer fails unexpectedly", func() {
			BeforeEach(func() {
				scanner.scanErr = errors.New("connection reset")
			})

			It("should prefix the message", func() {
				envelope := decodeError(post("/api/scan", scanBody(validImage)))
				Expect(envelope.Error).To(HavePrefix("Failed to process receipt: "))
				Expect(envelope.Error).To(ContainSubstring("connection reset"))
			})
		})

		When("the body is not JSON", func() {
			It("should return invalid_request", func() {
				resp := post("/api/scan", bytes.NewBufferString("{not json"))
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				Expect(decodeError(resp)).To(Equal(ErrorResponse{Error: "Invalid request body", Code: CodeInvalidRequest}))
			})
		})

		When("no scanner is configured", func() {
			BeforeEach(func() {
				service = NewService(nil)
				setupServer()
			})

			It("should return config_error", func() {
				resp := post("/api/scan", scanBody(validImage))
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
				Expect(decodeError(resp).Code).To(Equal(CodeConfigError))
			})

			It("should report config_error before looking at the body", func() {
				resp := post("/api/scan", bytes.NewBufferString("{not json"))
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
				Expect(decodeError(resp).Code).To(Equal(CodeConfigError))
			})
		})

		When("request method is GET", func() {
			It("should return status Method Not Allowed", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/scan")
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusMethodNotAllowed))
			})
		})
	})

	Describe("CORS preflight", func() {
		It("should answer OPTIONS with ok", func() {
			req, err := http.NewRequest(http.MethodOptions, ghttpServer.URL()+"/api/scan", nil)
			Expect(err).NotTo(HaveOccurred())
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(Equal("ok"))
			Expect(resp.Header.Get("Access-Control-Allow-Methods")).To(Equal("POST, OPTIONS"))
			Expect(resp.Header.Get("Access-Control-Allow-Headers")).To(ContainSubstring("x-client-info"))
		})
	})

	Describe("handleHealth", func() {
		It("should return status OK", func() {
			resp, err := http.Get(ghttpServer.URL() + "/healthz")
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})
	})

	Describe("basic auth", func() {
		BeforeEach(func() {
			auth = BasicAuth{Username: "admin", Password: "secret"}
			setupServer()
		})

		When("credentials are missing", func() {
			It("should return status Unauthorized", func() {
				resp := post("/api/scan", scanBody(validImage))
				Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
				Expect(resp.Header.Get("WWW-Authenticate")).To(ContainSubstring("Basic"))
				Expect(decodeError(resp).Code).To(Equal(CodeUnauthorized))
			})
		})

		When("credentials are wrong", func() {
			It("should return status Unauthorized", func() {
				req, err := http.NewRequest(http.MethodPost, ghttpServer.URL()+"/api/scan", scanBody(validImage))
				Expect(err).NotTo(HaveOccurred())
				req.SetBasicAuth("admin", "wrong")
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			})
		})

		When("credentials are correct", func() {
			It("should scan the receipt", func() {
				req, err := http.NewRequest(http.MethodPost, ghttpServer.URL()+"/api/scan", scanBody(validImage))
				Expect(err).NotTo(HaveOccurred())
				req.SetBasicAuth("admin", "secret")
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
			})
		})

		When("the request is a preflight", func() {
			It("should not require credentials", func() {
				req, err := http.NewRequest(http.MethodOptions, ghttpServer.URL()+"/api/scan", nil)
				Expect(err).NotTo(HaveOccurred())
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
			})
		})
	})
})
