package handler

import (
	"encoding/base64"
	"fmt"

	"quantum-receipt-gateway/internal/adapter/http/dto"
	"quantum-receipt-gateway/internal/core/domain"
	"quantum-receipt-gateway/internal/service"
	"quantum-receipt-gateway/pkg/apperror"
	"quantum-receipt-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// PQCHandler is the remote signing delegate. Keys travel base64 encoded in
// both directions; the handler keeps no key material.
type PQCHandler struct {
	defaultAlgorithm string
}

// NewPQCHandler creates a delegate that signs with defaultAlgorithm unless a
// request names another scheme.
func NewPQCHandler(defaultAlgorithm string) *PQCHandler {
	return &PQCHandler{defaultAlgorithm: defaultAlgorithm}
}

func (h *PQCHandler) scheme(name string) (*service.SchemeSigner, error) {
	if name == "" {
		name = h.defaultAlgorithm
	}
	s, err := service.NewSchemeSigner(name)
	if err != nil {
		return nil, apperror.Validation(fmt.Sprintf("unsupported algorithm %q", name))
	}
	return s, nil
}

// Keypair handles POST /pqc/keypair. The body is optional.
func (h *PQCHandler) Keypair(c *gin.Context) {
	var req dto.PQCKeypairRequest
	if c.Request.ContentLength != 0 {
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}
	}

	s, err := h.scheme(req.Algorithm)
	if err != nil {
		response.Error(c, err)
		return
	}
	kp, err := s.GenerateKeyPair(c.Request.Context())
	if err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}

	response.OK(c, dto.PQCKeypairResponse{
		Algorithm: kp.Algorithm,
		PublicKey: base64.StdEncoding.EncodeToString(kp.PublicKey),
		SecretKey: base64.StdEncoding.EncodeToString(kp.PrivateKey),
	})
}

// Sign handles POST /pqc/sign.
func (h *PQCHandler) Sign(c *gin.Context) {
	var req dto.PQCSignRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	s, err := h.scheme(req.Algorithm)
	if err != nil {
		response.Error(c, err)
		return
	}
	msg, _ := base64.StdEncoding.DecodeString(req.Message)
	sk, _ := base64.StdEncoding.DecodeString(req.SecretKey)

	sig, err := s.Sign(c.Request.Context(), msg, &domain.KeyPair{PrivateKey: sk, Algorithm: s.Algorithm()})
	if err != nil {
		response.Error(c, apperror.Validation(fmt.Sprintf("invalid %s secret key", s.Algorithm())))
		return
	}

	response.OK(c, dto.PQCSignResponse{
		Algorithm: sig.Algorithm,
		Signature: base64.StdEncoding.EncodeToString(sig.Value),
	})
}

// Verify handles POST /pqc/verify. Malformed keys verify false.
func (h *PQCHandler) Verify(c *gin.Context) {
	var req dto.PQCVerifyRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	s, err := h.scheme(req.Algorithm)
	if err != nil {
		response.Error(c, err)
		return
	}
	msg, _ := base64.StdEncoding.DecodeString(req.Message)
	sig, _ := base64.StdEncoding.DecodeString(req.Signature)
	pub, _ := base64.StdEncoding.DecodeString(req.PublicKey)

	valid, err := s.Verify(c.Request.Context(), msg, sig, pub)
	if err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}
	response.OK(c, dto.PQCVerifyResponse{Algorithm: s.Algorithm(), Valid: valid})
}

// Algorithms handles GET /pqc/algorithms.
func (h *PQCHandler) Algorithms(c *gin.Context) {
	schemes := service.AvailableSchemes()
	out := make([]dto.PQCAlgorithm, 0, len(schemes))
	for _, s := range schemes {
		out = append(out, dto.PQCAlgorithm{
			Name:           s.Name,
			PublicKeySize:  s.PublicKeySize,
			PrivateKeySize: s.PrivateKeySize,
			SignatureSize:  s.SignatureSize,
			SeedSize:       s.SeedSize,
		})
	}
	response.OK(c, dto.PQCAlgorithmsResponse{Default: h.defaultAlgorithm, Algorithms: out})
}
