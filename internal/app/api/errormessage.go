// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package api

import (
	"net/http"

	"github.com/insolar/settlement/internal/app/settlement"
)

type ErrorMessage struct {
	Error []string `json:"error"`
}

func NewSingleMessageError(err string) ErrorMessage {
	return ErrorMessage{Error: []string{err}}
}

// StatusOf maps a domain error to the HTTP status reported to the client.
func StatusOf(err error) int {
	switch settlement.KindOf(err) {
	case settlement.KindUnauthorized:
		return http.StatusForbidden
	case settlement.KindInvalidInput, settlement.KindIncorrectTotalAmount, settlement.KindFeeTooHigh:
		return http.StatusBadRequest
	case settlement.KindNotFound:
		return http.StatusNotFound
	case settlement.KindDuplicateID, settlement.KindAlreadySettled, settlement.KindTooEarly:
		return http.StatusConflict
	case settlement.KindInsufficientFunds:
		return http.StatusUnprocessableEntity
	case settlement.KindPaused:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
