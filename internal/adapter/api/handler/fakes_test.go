package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"flipearn/internal/adapter/api"
	"flipearn/internal/adapter/api/middleware"
	"flipearn/internal/domain/entity"
	"flipearn/internal/domain/service"
	"flipearn/internal/usecase"
	"flipearn/pkg/response"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeListings struct {
	input     usecase.ListingInput
	files     []service.ImageFile
	fileBody  []string
	listing   *entity.Listing
	listings  []*entity.Listing
	owner     *usecase.OwnerListings
	err       error
	notified  []*entity.Listing
	calledFor string
}

func (f *fakeListings) capture(files []service.ImageFile) {
	f.files = files
	for _, file := range files {
		rc, err := file.Open()
		if err != nil {
			continue
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		f.fileBody = append(f.fileBody, string(data))
	}
}

func (f *fakeListings) CreateListing(ctx context.Context, auth entity.AuthContext, input usecase.ListingInput, files []service.ImageFile) (*entity.Listing, error) {
	f.calledFor = auth.UserID
	f.input = input
	f.capture(files)
	return f.listing, f.err
}

func (f *fakeListings) UpdateListing(ctx context.Context, ownerID string, input usecase.ListingInput, files []service.ImageFile) (*entity.Listing, error) {
	f.calledFor = ownerID
	f.input = input
	f.capture(files)
	return f.listing, f.err
}

func (f *fakeListings) ToggleStatus(ctx context.Context, ownerID, listingID string) (*entity.Listing, error) {
	f.calledFor = ownerID + "/" + listingID
	return f.listing, f.err
}

func (f *fakeListings) DeleteListing(ctx context.Context, ownerID, listingID string) (*entity.Listing, error) {
	f.calledFor = ownerID + "/" + listingID
	return f.listing, f.err
}

func (f *fakeListings) NotifyDeletion(listing *entity.Listing) {
	f.notified = append(f.notified, listing)
}

func (f *fakeListings) MarkFeatured(ctx context.Context, auth entity.AuthContext, listingID string) (*entity.Listing, error) {
	f.calledFor = auth.UserID + "/" + listingID
	return f.listing, f.err
}

func (f *fakeListings) ListPublic(ctx context.Context) ([]*entity.Listing, error) {
	return f.listings, f.err
}

func (f *fakeListings) ListForOwner(ctx context.Context, ownerID string) (*usecase.OwnerListings, error) {
	return f.owner, f.err
}

type fakeCredentials struct {
	listingID string
	fields    []entity.CredentialField
	err       error
}

func (f *fakeCredentials) SubmitCredential(ctx context.Context, ownerID, listingID string, fields []entity.CredentialField) (*entity.Credential, error) {
	f.listingID = listingID
	f.fields = fields
	if f.err != nil {
		return nil, f.err
	}
	return &entity.Credential{ID: "c1", ListingID: listingID, OriginalCredential: fields}, nil
}

type fakeLedger struct {
	amount      decimal.Decimal
	account     string
	orders      []*entity.Order
	balance     entity.Balance
	withdrawals []*entity.Withdrawal
	err         error
}

func (f *fakeLedger) RequestWithdrawal(ctx context.Context, userID string, amount decimal.Decimal, account string) (*entity.Withdrawal, error) {
	f.amount = amount
	f.account = account
	if f.err != nil {
		return nil, f.err
	}
	return &entity.Withdrawal{ID: "w1", UserID: userID, Amount: amount, Account: account}, nil
}

func (f *fakeLedger) ListPaidOrders(ctx context.Context, userID string) ([]*entity.Order, error) {
	return f.orders, f.err
}

func (f *fakeLedger) GetBalance(ctx context.Context, userID string) (entity.Balance, error) {
	return f.balance, f.err
}

func (f *fakeLedger) ListWithdrawals(ctx context.Context, userID string) ([]*entity.Withdrawal, error) {
	return f.withdrawals, f.err
}

func (f *fakeLedger) PurchaseAccount(ctx context.Context, userID, listingID string) error {
	return usecase.NewLedgerUseCase(nil).PurchaseAccount(ctx, userID, listingID)
}

type fakeChats struct {
	userID, listingID, chatID, text string
	chat                            *entity.Chat
	err                             error
}

func (f *fakeChats) GetOrCreateChat(ctx context.Context, userID, listingID, chatID string) (*entity.Chat, error) {
	f.userID, f.listingID, f.chatID = userID, listingID, chatID
	return f.chat, f.err
}

func (f *fakeChats) ListUserChats(ctx context.Context, userID string) ([]*entity.Chat, error) {
	f.userID = userID
	if f.chat == nil {
		return []*entity.Chat{}, f.err
	}
	return []*entity.Chat{f.chat}, f.err
}

func (f *fakeChats) SendMessage(ctx context.Context, userID, chatID, text string) (*entity.Message, error) {
	f.userID, f.chatID, f.text = userID, chatID, text
	if f.err != nil {
		return nil, f.err
	}
	return &entity.Message{ID: 1, ChatID: chatID, SenderID: userID, Message: text}, nil
}

// helpers

var testUser = entity.AuthContext{UserID: "u1", Email: "u1@example.com", Tier: entity.TierFree}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = api.NewValidator()
	return e
}

func newJSONContext(e *echo.Echo, method, target string, body interface{}, auth *entity.AuthContext) (echo.Context, *httptest.ResponseRecorder) {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if auth != nil {
		middleware.SetAuth(c, *auth)
	}
	return c, rec
}

type formImage struct {
	name        string
	contentType string
	body        string
}

func newMultipartContext(t *testing.T, e *echo.Echo, method string, accountDetails string, images []formImage, auth *entity.AuthContext) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if accountDetails != "" {
		require.NoError(t, w.WriteField("accountDetails", accountDetails))
	}
	for _, img := range images {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="images"; filename="`+img.name+`"`)
		h.Set("Content-Type", img.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(img.body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, "/api/listing", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if auth != nil {
		middleware.SetAuth(c, *auth)
	}
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decode(t, rec)
	require.NotNil(t, resp.Error, "body: %s", rec.Body.String())
	return resp.Error.Code
}

func jsonUnmarshal(s string, v interface{}) error {
	return json.Unmarshal([]byte(s), v)
}
