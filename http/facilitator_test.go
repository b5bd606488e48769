package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	x402 "github.com/spikesonicguest/blip-x402-go"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRequirements() x402.PaymentRequirements {
	return x402.PaymentRequirements{
		Scheme:            "exact",
		Network:           "solana-devnet",
		MaxAmountRequired: "1000",
		Resource:          "/",
		Description:       "Payment required",
		MimeType:          "application/json",
		PayTo:             "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		MaxTimeoutSeconds: 30,
		Asset:             "SOL",
	}
}

type recordedRequest struct {
	Method      string
	ContentType string
	Accept      string
	Auth        string
	Body        facilitatorRequest
}

// newFacilitator starts a fake facilitator whose handlers are supplied by the test.
func newFacilitator(t *testing.T, setup func(r *gin.Engine)) *httptest.Server {
	t.Helper()
	r := gin.New()
	setup(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func record(dst *recordedRequest, reply func(c *gin.Context)) gin.HandlerFunc {
	return func(c *gin.Context) {
		dst.Method = c.Request.Method
		dst.ContentType = c.GetHeader("Content-Type")
		dst.Accept = c.GetHeader("Accept")
		dst.Auth = c.GetHeader("Authorization")
		_ = c.ShouldBindJSON(&dst.Body)
		reply(c)
	}
}

func TestVerify_Success(t *testing.T) {
	var got recordedRequest
	srv := newFacilitator(t, func(r *gin.Engine) {
		r.POST("/verify", record(&got, func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"isValid": true, "invalidReason": nil})
		}))
	})

	client := NewFacilitatorClient(WithAuthorization("Bearer k"))
	resp := client.Verify(context.Background(), srv.URL, "aGVhZGVy", testRequirements())

	assert.True(t, resp.IsValid)
	assert.Nil(t, resp.InvalidReason)

	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "application/json", got.ContentType)
	assert.Equal(t, "application/json", got.Accept)
	assert.Equal(t, "Bearer k", got.Auth)
	assert.Equal(t, 1, got.Body.X402Version)
	assert.Equal(t, "aGVhZGVy", got.Body.PaymentHeader)
	assert.Equal(t, testRequirements(), got.Body.PaymentRequirements)
}

func TestVerify_InvalidPassThrough(t *testing.T) {
	srv := newFacilitator(t, func(r *gin.Engine) {
		r.POST("/verify", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"isValid": false, "invalidReason": "insufficient_funds"})
		})
	})

	resp := NewFacilitatorClient().Verify(context.Background(), srv.URL+"/", "h", testRequirements())
	assert.False(t, resp.IsValid)
	assert.Equal(t, "insufficient_funds", resp.Reason())
}

func TestVerify_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := newFacilitator(t, func(r *gin.Engine) {
		r.POST("/verify", func(c *gin.Context) {
			select {
			case <-release:
			case <-c.Request.Context().Done():
			}
		})
	})
	defer close(release)

	client := NewFacilitatorClient(WithTimeouts(Timeouts{Verify: 50 * time.Millisecond}))
	resp := client.Verify(context.Background(), srv.URL, "h", testRequirements())

	assert.False(t, resp.IsValid)
	assert.Equal(t, "Request timeout", resp.Reason())
}

func TestVerify_StatusError(t *testing.T) {
	srv := newFacilitator(t, func(r *gin.Engine) {
		r.POST("/verify", func(c *gin.Context) {
			c.Status(http.StatusBadGateway)
		})
	})

	resp := NewFacilitatorClient().Verify(context.Background(), srv.URL, "h", testRequirements())
	assert.False(t, resp.IsValid)
	assert.Equal(t, "Verification failed (502): Bad Gateway", resp.Reason())
}

func TestVerify_TransportError(t *testing.T) {
	srv := newFacilitator(t, func(r *gin.Engine) {})
	url := srv.URL
	srv.Close()

	resp := NewFacilitatorClient().Verify(context.Background(), url, "h", testRequirements())
	assert.False(t, resp.IsValid)
	assert.NotEmpty(t, resp.Reason())
	assert.NotEqual(t, "Request timeout", resp.Reason())
}

func TestVerify_MalformedBody(t *testing.T) {
	srv := newFacilitator(t, func(r *gin.Engine) {
		r.POST("/verify", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"valid": "yes"})
		})
	})

	resp := NewFacilitatorClient().Verify(context.Background(), srv.URL, "h", testRequirements())
	assert.False(t, resp.IsValid)
	assert.Contains(t, resp.Reason(), "protocol")
}

func TestOversizedReplies(t *testing.T) {
	padding := strings.Repeat(" ", MaxResponseBytes)
	srv := newFacilitator(t, func(r *gin.Engine) {
		r.POST("/verify", func(c *gin.Context) {
			c.Data(http.StatusOK, "application/json", []byte(`{"isValid":true}`+padding))
		})
		r.POST("/settle", func(c *gin.Context) {
			c.Data(http.StatusBadGateway, "text/plain", []byte("x"+padding))
		})
		r.GET("/supported", func(c *gin.Context) {
			c.Data(http.StatusOK, "application/json", []byte(`{"kinds":[]}`+padding))
		})
	})
	client := NewFacilitatorClient()

	verify := client.Verify(context.Background(), srv.URL, "aGVhZGVy", testRequirements())
	assert.False(t, verify.IsValid)
	require.NotNil(t, verify.InvalidReason)
	assert.Contains(t, *verify.InvalidReason, "exceeds")

	settle := client.Settle(context.Background(), srv.URL, "aGVhZGVy", testRequirements())
	assert.False(t, settle.Success)
	require.NotNil(t, settle.Error)
	assert.Contains(t, *settle.Error, "Settlement failed (502)")
	assert.LessOrEqual(t, len(*settle.Error), MaxResponseBytes+64)

	_, err := client.GetSupportedMethods(context.Background(), srv.URL)
	assert.True(t, errors.Is(err, x402.ErrFacilitatorProtocol))
}

func TestSettle_Success(t *testing.T) {
	var got recordedRequest
	srv := newFacilitator(t, func(r *gin.Engine) {
		r.POST("/settle", record(&got, func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"success":   true,
				"error":     nil,
				"txHash":    "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnb",
				"networkId": "solana-devnet",
			})
		}))
	})

	resp := NewFacilitatorClient().Settle(context.Background(), srv.URL, "h", testRequirements())
	assert.True(t, resp.Success)
	assert.Equal(t, "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnb", resp.Transaction())
	require.NotNil(t, resp.NetworkID)
	assert.Equal(t, "solana-devnet", *resp.NetworkID)
	assert.Equal(t, "h", got.Body.PaymentHeader)
}

func TestSettle_ServerError(t *testing.T) {
	srv := newFacilitator(t, func(r *gin.Engine) {
		r.POST("/settle", func(c *gin.Context) {
			c.String(http.StatusInternalServerError, "oops")
		})
	})

	resp := NewFacilitatorClient().Settle(context.Background(), srv.URL, "h", testRequirements())
	assert.False(t, resp.Success)
	assert.Contains(t, resp.ErrorReason(), "500")
	assert.Equal(t, "Settlement failed (500): oops", resp.ErrorReason())
	assert.Nil(t, resp.TxHash)
	assert.Nil(t, resp.NetworkID)
}

func TestSettle_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := newFacilitator(t, func(r *gin.Engine) {
		r.POST("/settle", func(c *gin.Context) {
			select {
			case <-release:
			case <-c.Request.Context().Done():
			}
		})
	})
	defer close(release)

	client := NewFacilitatorClient(WithTimeouts(Timeouts{Settle: 50 * time.Millisecond}))
	resp := client.Settle(context.Background(), srv.URL, "h", testRequirements())
	assert.False(t, resp.Success)
	assert.Equal(t, "Request timeout", resp.ErrorReason())
	assert.Nil(t, resp.TxHash)
}

func TestGetSupportedMethods(t *testing.T) {
	srv := newFacilitator(t, func(r *gin.Engine) {
		r.GET("/supported", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"kinds": []gin.H{
				{"scheme": "exact", "network": "solana"},
				{"scheme": "exact", "network": "base"},
			}})
		})
	})

	kinds, err := NewFacilitatorClient().GetSupportedMethods(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []x402.SupportedKind{
		{Scheme: "exact", Network: "solana"},
		{Scheme: "exact", Network: "base"},
	}, kinds)
}

func TestGetSupportedMethods_MissingKinds(t *testing.T) {
	srv := newFacilitator(t, func(r *gin.Engine) {
		r.GET("/supported", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{})
		})
	})

	kinds, err := NewFacilitatorClient().GetSupportedMethods(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.NotNil(t, kinds)
	assert.Empty(t, kinds)
}

func TestGetSupportedMethods_Errors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv := newFacilitator(t, func(r *gin.Engine) {
			r.GET("/supported", func(c *gin.Context) {
				c.Status(http.StatusServiceUnavailable)
			})
		})

		_, err := NewFacilitatorClient().GetSupportedMethods(context.Background(), srv.URL)
		require.Error(t, err)
		assert.True(t, errors.Is(err, x402.ErrFacilitatorProtocol))

		var statusErr *x402.StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := newFacilitator(t, func(r *gin.Engine) {
			r.GET("/supported", func(c *gin.Context) {
				<-c.Request.Context().Done()
			})
		})

		client := NewFacilitatorClient(WithTimeouts(Timeouts{Supported: 50 * time.Millisecond}))
		_, err := client.GetSupportedMethods(context.Background(), srv.URL)
		require.Error(t, err)
		assert.True(t, errors.Is(err, x402.ErrFacilitatorTransport))
		assert.Contains(t, err.Error(), "Request timeout")
	})

	t.Run("bad json", func(t *testing.T) {
		srv := newFacilitator(t, func(r *gin.Engine) {
			r.GET("/supported", func(c *gin.Context) {
				c.String(http.StatusOK, "<html>")
			})
		})

		_, err := NewFacilitatorClient().GetSupportedMethods(context.Background(), srv.URL)
		assert.True(t, errors.Is(err, x402.ErrFacilitatorProtocol))
	})
}

func TestSupportedMethodsOrDefault(t *testing.T) {
	srv := newFacilitator(t, func(r *gin.Engine) {
		r.GET("/supported", func(c *gin.Context) {
			c.Status(http.StatusInternalServerError)
		})
	})

	info := x402.FacilitatorInfo{Name: "test", URL: srv.URL, Networks: []string{"solana-devnet", "base"}}
	kinds := NewFacilitatorClient().SupportedMethodsOrDefault(context.Background(), info)
	assert.Equal(t, []x402.SupportedKind{
		{Scheme: "solana", Network: "solana-devnet"},
		{Scheme: "evm", Network: "base"},
	}, kinds)
}

func TestConcurrentVerifies(t *testing.T) {
	srv := newFacilitator(t, func(r *gin.Engine) {
		r.POST("/verify", func(c *gin.Context) {
			var req facilitatorRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.Status(http.StatusBadRequest)
				return
			}
			// Echo the header back so each caller can check it got its own reply.
			c.JSON(http.StatusOK, gin.H{"isValid": false, "invalidReason": req.PaymentHeader})
		})
	})

	client := NewFacilitatorClient()
	const n = 20

	var wg sync.WaitGroup
	results := make([]x402.VerifyResponse, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = client.Verify(context.Background(), srv.URL, fmt.Sprintf("header-%d", i), testRequirements())
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("header-%d", i), r.Reason())
	}
}

func TestDefaults(t *testing.T) {
	c := NewFacilitatorClient(WithTimeouts(Timeouts{Verify: time.Second}), WithLogger(nil), WithHTTPClient(nil))
	assert.Equal(t, time.Second, c.Timeouts().Verify)
	assert.Equal(t, 30*time.Second, c.Timeouts().Settle)
	assert.Equal(t, 10*time.Second, c.Timeouts().Supported)

	assert.Equal(t, Timeouts{Verify: 30 * time.Second, Settle: 30 * time.Second, Supported: 10 * time.Second}, DefaultTimeouts)

	custom := &http.Client{}
	withHTTP := NewFacilitatorClientWithHTTP(custom, WithTimeouts(Timeouts{Settle: time.Minute}))
	assert.Same(t, custom, withHTTP.client)
	assert.Equal(t, time.Minute, withHTTP.Timeouts().Settle)
}

func TestFacilitatorURL(t *testing.T) {
	url, err := FacilitatorURL("payai")
	require.NoError(t, err)
	assert.NotEmpty(t, url)

	_, err = FacilitatorURL("nope")
	assert.True(t, errors.Is(err, x402.ErrUnknownFacilitator))
}

func TestRequestBodyShape(t *testing.T) {
	data, err := json.Marshal(facilitatorRequest{X402Version: 1, PaymentHeader: "h", PaymentRequirements: testRequirements()})
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Len(t, raw, 3)
	assert.Contains(t, raw, "x402Version")
	assert.Contains(t, raw, "paymentHeader")
	assert.Contains(t, raw, "paymentRequirements")
}
