package issuer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/labstack/echo/v4"
)

// Publisher is the content publishing surface behind the pin routes.
type Publisher interface {
	PinBytes(ctx context.Context, data []byte, name string) (string, error)
	PinJSON(ctx context.Context, v any, name string) (string, error)
}

type API struct {
	service   *Service
	publisher Publisher
}

// Register the issuance API to echo.
func Register(e *echo.Echo, service *Service, publisher Publisher) {
	api := &API{service: service, publisher: publisher}
	e.GET("/ping", api.Ping)
	e.POST("/pin-file", api.PinFile)
	e.POST("/pin-json", api.PinJSON)
	e.POST("/voucher", api.Voucher)
}

func (a *API) Ping(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		"status": "ok",
		"time":   time.Now().UnixMilli(),
	})
}

func (a *API) PinFile(ctx echo.Context) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "no file uploaded"})
	}
	src, err := file.Open()
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	cid, err := a.publisher.PinBytes(ctx.Request().Context(), data, file.Filename)
	if err != nil {
		slog.Error("pin-file error:", "err", err)
		return ctx.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return ctx.JSON(http.StatusOK, echo.Map{"cid": cid})
}

func (a *API) PinJSON(ctx echo.Context) error {
	var body map[string]any
	if err := ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	cid, err := a.publisher.PinJSON(ctx.Request().Context(), body, "metadata")
	if err != nil {
		slog.Error("pin-json error:", "err", err)
		return ctx.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return ctx.JSON(http.StatusOK, echo.Map{"cid": cid})
}

// VoucherBody is the wire form of a voucher, bound from the request
// and echoed back in the response.
type VoucherBody struct {
	Recipient string `json:"recipient"`
	URI       string `json:"uri"`
}

type VoucherResponse struct {
	Voucher   VoucherBody `json:"voucher"`
	Signature string      `json:"signature"`
}

func (a *API) Voucher(ctx echo.Context) error {
	var request VoucherBody
	if err := ctx.Bind(&request); err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	v, signature, err := a.service.IssueVoucher(request.Recipient, request.URI)
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": vErr.Error()})
	}
	if err != nil {
		slog.Error("voucher error:", "err", err)
		return ctx.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return ctx.JSON(http.StatusOK, VoucherResponse{
		Voucher: VoucherBody{
			Recipient: v.Recipient.Hex(),
			URI:       v.URI,
		},
		Signature: hexutil.Encode(signature),
	})
}
