package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"strings"

	"flipearn/internal/domain/entity"
	"flipearn/internal/domain/service"
	"flipearn/internal/usecase"
	"flipearn/pkg/errors"
	"flipearn/pkg/logger"
	"flipearn/pkg/response"

	"github.com/labstack/echo/v4"
)

type ListingHandler struct {
	listings    ListingService
	credentials CredentialService
}

func NewListingHandler(listings ListingService, credentials CredentialService) *ListingHandler {
	return &ListingHandler{
		listings:    listings,
		credentials: credentials,
	}
}

// flexNumber accepts a JSON number or a numeric string and keeps the raw text
// for the use case to parse.
type flexNumber string

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = flexNumber(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*n = flexNumber(num.String())
	return nil
}

type accountDetailsRequest struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Platform       string     `json:"platform"`
	Username       string     `json:"username"`
	Niche          string     `json:"niche"`
	FollowersCount flexNumber `json:"followers_count"`
	EngagementRate flexNumber `json:"engagement_rate"`
	MonthlyViews   flexNumber `json:"monthly_views"`
	Price          flexNumber `json:"price"`
	Description    string     `json:"description"`
	Verified       bool       `json:"verified"`
	Monetized      bool       `json:"monetized"`
	Country        string     `json:"country"`
	AgeRange       string     `json:"age_range"`
	Images         []string   `json:"images"`
}

func (r accountDetailsRequest) input() usecase.ListingInput {
	return usecase.ListingInput{
		ID:             r.ID,
		Title:          r.Title,
		Platform:       r.Platform,
		Username:       r.Username,
		Niche:          r.Niche,
		FollowersCount: string(r.FollowersCount),
		EngagementRate: string(r.EngagementRate),
		MonthlyViews:   string(r.MonthlyViews),
		Price:          string(r.Price),
		Description:    r.Description,
		Verified:       r.Verified,
		Monetized:      r.Monetized,
		Country:        r.Country,
		AgeRange:       r.AgeRange,
		Images:         r.Images,
	}
}

type credentialRequest struct {
	ListingID  string                   `json:"listingId" validate:"required"`
	Credential []entity.CredentialField `json:"credential" validate:"required,min=1,dive"`
}

// parseListingForm reads the accountDetails JSON part and the images parts
// of a multipart listing request. The caller must call cleanup.
func parseListingForm(c echo.Context) (usecase.ListingInput, []service.ImageFile, func(), error) {
	cleanup := func() {}

	form, err := c.MultipartForm()
	if err != nil {
		return usecase.ListingInput{}, nil, cleanup, errors.BadRequest("Invalid multipart form", err)
	}
	cleanup = func() {
		if err := form.RemoveAll(); err != nil {
			logger.Warn("Failed to remove temporary upload files: %v", err)
		}
	}

	raw := ""
	if values := form.Value["accountDetails"]; len(values) > 0 {
		raw = values[0]
	}
	if strings.TrimSpace(raw) == "" {
		return usecase.ListingInput{}, nil, cleanup, errors.BadRequest("accountDetails is required", nil)
	}

	var details accountDetailsRequest
	if err := json.Unmarshal([]byte(raw), &details); err != nil {
		return usecase.ListingInput{}, nil, cleanup, errors.BadRequest("accountDetails must be valid JSON", err)
	}

	files := make([]service.ImageFile, 0, len(form.File["images"]))
	for _, fh := range form.File["images"] {
		contentType := fh.Header.Get("Content-Type")
		if contentType != "" && !strings.HasPrefix(contentType, "image/") {
			return usecase.ListingInput{}, nil, cleanup, errors.BadRequest("Only image uploads are allowed", nil)
		}
		files = append(files, imageFile(fh, contentType))
	}

	return details.input(), files, cleanup, nil
}

func imageFile(fh *multipart.FileHeader, contentType string) service.ImageFile {
	return service.ImageFile{
		Filename:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func (h *ListingHandler) CreateListing(c echo.Context) error {
	auth, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	input, files, cleanup, err := parseListingForm(c)
	defer cleanup()
	if err != nil {
		return response.Error(c, err)
	}

	listing, err := h.listings.CreateListing(c.Request().Context(), auth, input, files)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, "Account listed successfully", echo.Map{"listing": listing})
}

func (h *ListingHandler) UpdateListing(c echo.Context) error {
	auth, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	input, files, cleanup, err := parseListingForm(c)
	defer cleanup()
	if err != nil {
		return response.Error(c, err)
	}

	listing, err := h.listings.UpdateListing(c.Request().Context(), auth.UserID, input, files)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessMessage(c, "Account updated successfully", echo.Map{"listing": listing})
}

func (h *ListingHandler) GetPublicListings(c echo.Context) error {
	listings, err := h.listings.ListPublic(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, echo.Map{"listings": listings})
}

func (h *ListingHandler) GetUserListings(c echo.Context) error {
	auth, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	result, err := h.listings.ListForOwner(c.Request().Context(), auth.UserID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *ListingHandler) ToggleStatus(c echo.Context) error {
	auth, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	listing, err := h.listings.ToggleStatus(c.Request().Context(), auth.UserID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessMessage(c, "Listing status updated successfully", echo.Map{"listing": listing})
}

// DeleteListing answers the client before queueing the owner notification,
// so mail delivery never delays or fails the request.
func (h *ListingHandler) DeleteListing(c echo.Context) error {
	auth, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	listing, err := h.listings.DeleteListing(c.Request().Context(), auth.UserID, c.Param("listingId"))
	if err != nil {
		return response.Error(c, err)
	}

	if err := response.SuccessMessage(c, "Listing removed successfully", nil); err != nil {
		return err
	}
	c.Response().Flush()

	h.listings.NotifyDeletion(listing)
	return nil
}

func (h *ListingHandler) AddCredential(c echo.Context) error {
	auth, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req credentialRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	if _, err := h.credentials.SubmitCredential(c.Request().Context(), auth.UserID, req.ListingID, req.Credential); err != nil {
		return response.Error(c, err)
	}

	return response.SuccessMessage(c, "Credentials added successfully", nil)
}

func (h *ListingHandler) MarkFeatured(c echo.Context) error {
	auth, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	listing, err := h.listings.MarkFeatured(c.Request().Context(), auth, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessMessage(c, "Listing marked as featured", echo.Map{"listing": listing})
}
