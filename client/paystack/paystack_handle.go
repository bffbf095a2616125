package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	relayDTO "github.com/joy-dx/relay/dto"

	"github.com/joy-dx/storefront/dto"
	"github.com/joy-dx/storefront/relays"
)

// Handle is one prepared payment attempt. Open drives the gateway transaction
// and blocks until exactly one terminal outcome is known; cancelling ctx is
// the shopper closing the widget.
type Handle struct {
	cfg    *Config
	client gatewayAPI
	relay  relayDTO.RelayInterface
	params dto.WidgetParams
	opened bool
}

type transactionRequest struct {
	Key       string   `json:"key"`
	Email     string   `json:"email"`
	Amount    int64    `json:"amount"`
	Currency  string   `json:"currency,omitempty"`
	Reference string   `json:"reference"`
	Channels  []string `json:"channels,omitempty"`
}

type transactionResponse struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Message   string `json:"message"`
}

// Open charges through the gateway. Outcomes are mutually exclusive:
// SUCCESS carries the gateway-reported reference, CANCELLED is the shopper
// backing out, ERROR is everything else (transport failure, declined charge).
func (h *Handle) Open(ctx context.Context) dto.WidgetOutcome {
	if h.opened {
		return dto.WidgetOutcome{
			Kind:      dto.WIDGET_ERROR,
			Reference: h.params.Reference,
			Message:   "widget already opened",
		}
	}
	h.opened = true

	payload, err := json.Marshal(transactionRequest{
		Key:       h.params.Key,
		Email:     h.params.Email,
		Amount:    h.params.Amount,
		Currency:  h.params.Currency,
		Reference: h.params.Reference,
		Channels:  h.params.Channels,
	})
	if err != nil {
		return h.settle(dto.WidgetOutcome{
			Kind:      dto.WIDGET_ERROR,
			Reference: h.params.Reference,
			Message:   fmt.Sprintf("encode transaction: %v", err),
		})
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		gatewayEndpoint(h.cfg.GatewayURL, "/transaction"),
		bytes.NewReader(payload),
	)
	if err != nil {
		return h.settle(dto.WidgetOutcome{
			Kind:      dto.WIDGET_ERROR,
			Reference: h.params.Reference,
			Message:   fmt.Sprintf("build transaction request: %v", err),
		})
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if resp != nil {
		defer func() {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}()
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return h.settle(dto.WidgetOutcome{
				Kind:      dto.WIDGET_CANCELLED,
				Reference: h.params.Reference,
			})
		}
		return h.settle(dto.WidgetOutcome{
			Kind:      dto.WIDGET_ERROR,
			Reference: h.params.Reference,
			Message:   err.Error(),
		})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return h.settle(dto.WidgetOutcome{
			Kind:      dto.WIDGET_ERROR,
			Reference: h.params.Reference,
			Message:   fmt.Sprintf("read gateway response: %v", err),
		})
	}

	var tx transactionResponse
	// The reference echo is advisory; an unparseable body keeps ours.
	_ = json.Unmarshal(body, &tx)
	if tx.Reference == "" {
		tx.Reference = h.params.Reference
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return h.settle(dto.WidgetOutcome{
			Kind:      dto.WIDGET_SUCCESS,
			Reference: tx.Reference,
		})
	}

	msg := tx.Message
	if msg == "" {
		msg = fmt.Sprintf("gateway rejected transaction (%d)", resp.StatusCode)
	}
	return h.settle(dto.WidgetOutcome{
		Kind:      dto.WIDGET_ERROR,
		Reference: tx.Reference,
		Message:   msg,
	})
}

func (h *Handle) settle(outcome dto.WidgetOutcome) dto.WidgetOutcome {
	if h.relay != nil {
		h.relay.Debug(relays.RlyStoreLog{
			Msg: fmt.Sprintf("widget %s settled: %s", outcome.Reference, outcome.Kind),
		})
	}
	return outcome
}
