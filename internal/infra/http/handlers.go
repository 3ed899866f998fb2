package http

import (
	"context"
	"errors"
	"net/http"

	"revix/internal/domain"
	"revix/internal/usecase"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
)

const (
	bindingHeader = "X-Identity-Binding"

	// statusClientClosedRequest is nginx's code for a caller that went away
	// before the response was ready.
	statusClientClosedRequest = 499
)

type attestationResponse struct {
	MsgHash   string `json:"msgHash"`
	Signature string `json:"signature"`
}

type signerResponse struct {
	Address     string            `json:"address"`
	Semantics   map[string]string `json:"semantics"`
	AuthMode    string            `json:"auth_mode"`
	BindingMode string            `json:"binding_mode"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleAttestation(kind domain.ClaimKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.issue == nil || s.issue.Signing == nil {
			code := writeErrorCode(c, http.StatusInternalServerError, "SIGNING_FAILED", "signing failed")
			s.metrics.Failed(string(kind), code)
			return
		}
		att, err := s.issue.Execute(c.Request.Context(), usecase.IssueAttestationRequest{
			Credential: s.credential(c),
			Kind:       kind,
			Params:     c.Request.URL.Query(),
		})
		if err != nil && errors.Is(err, context.Canceled) && c.Request.Context().Err() != nil {
			s.log().Debug("attestation abandoned by caller", "kind", string(kind))
			c.AbortWithStatus(statusClientClosedRequest)
			return
		}
		if err != nil {
			var berr *usecase.BindingError
			if errors.As(err, &berr) {
				c.Header(bindingHeader, string(berr.Decision.Status))
			}
			code := writeError(c, err)
			s.metrics.Failed(string(kind), code)
			if code == "INTERNAL" {
				s.log().Error("attestation failed", "kind", string(kind), "error", err)
			}
			return
		}
		c.Header(bindingHeader, string(att.Binding.Status))
		c.JSON(http.StatusOK, attestationResponse{
			MsgHash:   att.Digest.Hex(),
			Signature: hexutil.Encode(att.Signature),
		})
	}
}

func (s *Server) handleSigner(c *gin.Context) {
	if s.signing == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "SIGNING_FAILED", "no signing key loaded")
		return
	}
	bindingMode := s.cfg.BindingMode
	if bindingMode == "" {
		bindingMode = "advisory"
	}
	c.JSON(http.StatusOK, signerResponse{
		Address:     s.signing.Address().Hex(),
		Semantics:   s.signing.Semantics(),
		AuthMode:    s.cfg.AuthMode,
		BindingMode: bindingMode,
	})
}

// writeError maps domain errors to a status and stable code and returns the
// code. Only validation and credential messages are passed through; all
// other failures get a fixed message.
func writeError(c *gin.Context, err error) string {
	var (
		verr *domain.ValidationError
		aerr *domain.AuthError
	)
	switch {
	case errors.As(err, &verr):
		if verr.Reason == domain.ReasonMissing {
			return writeErrorCode(c, http.StatusBadRequest, "MISSING_PARAMS", verr.Error())
		}
		return writeErrorCode(c, http.StatusBadRequest, "INVALID_PARAM", verr.Error())
	case errors.Is(err, domain.ErrValidation):
		return writeErrorCode(c, http.StatusBadRequest, "INVALID_PARAM", "invalid request")
	case errors.As(err, &aerr):
		return writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", aerr.Reason)
	case errors.Is(err, domain.ErrUnauthorized):
		return writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
	case errors.Is(err, domain.ErrBindingRejected):
		return writeErrorCode(c, http.StatusForbidden, "BINDING_REJECTED", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return writeErrorCode(c, http.StatusForbidden, "FORBIDDEN", "forbidden")
	case errors.Is(err, domain.ErrEncoding):
		return writeErrorCode(c, http.StatusInternalServerError, "ENCODING_FAILED", "encoding failed")
	case errors.Is(err, domain.ErrSigning):
		return writeErrorCode(c, http.StatusInternalServerError, "SIGNING_FAILED", "signing failed")
	default:
		return writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func writeErrorCode(c *gin.Context, status int, code, message string) string {
	c.JSON(status, errorResponse{
		Code:    code,
		Message: message,
	})
	return code
}
