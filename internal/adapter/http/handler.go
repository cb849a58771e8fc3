package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/adapter/http/middleware"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/crop/domain"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/crop/usecase"
)

const maxImageBytes = 5 << 20

// CropService is the usecase surface the handlers need.
type CropService interface {
	CreateCrop(ctx context.Context, p *domain.Principal, in usecase.CreateCropInput) (*domain.Crop, error)
	ListCrops(ctx context.Context) ([]*domain.Crop, error)
	GetCrop(ctx context.Context, id string) (*domain.Crop, error)
	UpdateCrop(ctx context.Context, p *domain.Principal, id string, patch domain.CropPatch) error
	DeleteCrop(ctx context.Context, p *domain.Principal, id string) error
	UploadCropImage(ctx context.Context, p *domain.Principal, id, fileName, contentType string, data io.Reader, size int64) (string, error)
	CreateInterest(ctx context.Context, p *domain.Principal, cropID string, in usecase.CreateInterestInput) (*domain.Interest, error)
	DecideInterest(ctx context.Context, p *domain.Principal, cropID, interestID string, status domain.InterestStatus) (*usecase.DecisionResult, error)
	ListMyInterests(ctx context.Context, p *domain.Principal) ([]usecase.SentInterest, error)
	ListMyCrops(ctx context.Context, p *domain.Principal) ([]*domain.Crop, error)
}

// Pinger reports store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type CropHandler struct {
	crops  CropService
	health Pinger
	resp   *responder
}

func (h *CropHandler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "Krishi-Setu Server is running")
}

func (h *CropHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *CropHandler) CreateCrop(w http.ResponseWriter, r *http.Request) {
	var req createCropRequest
	if err := readJSON(w, r, &req, false); err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	crop, err := h.crops.CreateCrop(r.Context(), middleware.PrincipalFromContext(r.Context()), req.toInput())
	if err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createCropResponse{Message: "Crop added successfully", InsertedID: crop.ID})
}

func (h *CropHandler) ListCrops(w http.ResponseWriter, r *http.Request) {
	crops, err := h.crops.ListCrops(r.Context())
	if err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCropDTOs(crops))
}

func (h *CropHandler) GetCrop(w http.ResponseWriter, r *http.Request) {
	crop, err := h.crops.GetCrop(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCropDTO(crop))
}

func (h *CropHandler) UpdateCrop(w http.ResponseWriter, r *http.Request) {
	var req updateCropRequest
	if err := readJSON(w, r, &req, true); err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	p := middleware.PrincipalFromContext(r.Context())
	if err := h.crops.UpdateCrop(r.Context(), p, chi.URLParam(r, "id"), req.toPatch()); err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Crop updated successfully"})
}

func (h *CropHandler) DeleteCrop(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())
	if err := h.crops.DeleteCrop(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Crop deleted successfully"})
}

func (h *CropHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+(1<<20))
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		h.resp.writeError(w, r, &decodeError{err: err})
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		h.resp.writeError(w, r, &decodeError{err: errors.New("multipart field \"image\" is required")})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = sniffContentType(file)
	}

	p := middleware.PrincipalFromContext(r.Context())
	url, err := h.crops.UploadCropImage(r.Context(), p, chi.URLParam(r, "id"),
		filepath.Base(header.Filename), contentType, file, header.Size)
	if err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, imageResponse{Image: url})
}

// sniffContentType peeks at the head of f and rewinds it.
func sniffContentType(f io.ReadSeeker) string {
	buf := make([]byte, 512)
	n, _ := io.ReadFull(f, buf)
	_, _ = f.Seek(0, io.SeekStart)
	return http.DetectContentType(buf[:n])
}

func (h *CropHandler) CreateInterest(w http.ResponseWriter, r *http.Request) {
	var req createInterestRequest
	if err := readJSON(w, r, &req, false); err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	p := middleware.PrincipalFromContext(r.Context())
	interest, err := h.crops.CreateInterest(r.Context(), p, chi.URLParam(r, "id"), usecase.CreateInterestInput{
		Quantity: float64(req.Quantity),
		Message:  req.Message,
		UserName: req.UserName,
	})
	if err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createInterestResponse{OK: true, Interest: toInterestDTO(interest)})
}

func (h *CropHandler) DecideInterest(w http.ResponseWriter, r *http.Request) {
	var req decideInterestRequest
	if err := readJSON(w, r, &req, false); err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	p := middleware.PrincipalFromContext(r.Context())
	res, err := h.crops.DecideInterest(r.Context(), p,
		chi.URLParam(r, "cropId"), chi.URLParam(r, "interestId"), domain.InterestStatus(req.Status))
	if err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, decideInterestResponse{OK: true, Status: string(res.Status), RemainingQuantity: res.RemainingQuantity})
}

func (h *CropHandler) MyInterests(w http.ResponseWriter, r *http.Request) {
	sent, err := h.crops.ListMyInterests(r.Context(), middleware.PrincipalFromContext(r.Context()))
	if err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSentInterestDTOs(sent))
}

func (h *CropHandler) MyPosts(w http.ResponseWriter, r *http.Request) {
	crops, err := h.crops.ListMyCrops(r.Context(), middleware.PrincipalFromContext(r.Context()))
	if err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCropDTOs(crops))
}
