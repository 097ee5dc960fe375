// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/settlement/blob/master/LICENSE.md.

package api

// Amounts travel as decimal strings in whole units of the asset, e.g. "1.5".

type ProcessPaymentRequest struct {
	ID       string `json:"id,omitempty"`
	Payee    string `json:"payee"`
	Asset    string `json:"asset,omitempty"`
	Amount   string `json:"amount"`
	Supplied string `json:"supplied"`
	Memo     string `json:"memo,omitempty"`
}

type ReceiptResponse struct {
	PaymentID string `json:"payment_id"`
	Fee       string `json:"fee"`
	Net       string `json:"net"`
}

type PaymentRecordRequest struct {
	ID        string `json:"id"`
	Payer     string `json:"payer"`
	Payee     string `json:"payee"`
	Amount    string `json:"amount"`
	Asset     string `json:"asset_type"`
	Timestamp int64  `json:"timestamp"`
	Memo      string `json:"memo"`
	Status    string `json:"status"`
}

type PaymentRecordResponse PaymentRecordRequest

type StatusRequest struct {
	Status string `json:"status"`
}

type CountResponse struct {
	Count int `json:"count"`
}

type CreateEscrowRequest struct {
	Payee       string `json:"payee"`
	Asset       string `json:"asset,omitempty"`
	Amount      string `json:"amount"`
	Supplied    string `json:"supplied"`
	ReleaseTime int64  `json:"release_time"`
	Memo        string `json:"memo,omitempty"`
}

type EscrowResponse struct {
	ID          uint64 `json:"id"`
	Payer       string `json:"payer"`
	Payee       string `json:"payee"`
	Amount      string `json:"amount"`
	Asset       string `json:"asset"`
	ReleaseTime int64  `json:"release_time"`
	Memo        string `json:"memo"`
	Released    bool   `json:"released"`
	Refunded    bool   `json:"refunded"`
}

type CreateSplitterRequest struct {
	Asset  string   `json:"asset,omitempty"`
	Payees []string `json:"payees"`
	Shares []uint64 `json:"shares"`
}

type ShareResponse struct {
	Payee    string `json:"payee"`
	Shares   uint64 `json:"shares"`
	Released string `json:"released"`
}

type SplitterResponse struct {
	ID            string          `json:"id"`
	Account       string          `json:"account"`
	Asset         string          `json:"asset"`
	TotalShares   uint64          `json:"total_shares"`
	TotalReleased string          `json:"total_released"`
	Payees        []ShareResponse `json:"payees"`
}

type ReleaseRequest struct {
	Payee string `json:"payee"`
}

type AmountResponse struct {
	Amount string `json:"amount"`
}

type BatchTransferRequest struct {
	Asset      string   `json:"asset,omitempty"`
	Supplied   string   `json:"supplied"`
	Recipients []string `json:"recipients"`
	Amounts    []string `json:"amounts"`
}

type AccountRequest struct {
	Account string `json:"account"`
}

type RoleAdminRequest struct {
	Admin string `json:"admin"`
}

type MembersResponse struct {
	Role    string   `json:"role"`
	Members []string `json:"members"`
}

type FeeRequest struct {
	BasisPoints uint32 `json:"basis_points"`
}

type SettingsResponse struct {
	FeeBasisPoints uint32 `json:"fee_basis_points"`
	FeeCollector   string `json:"fee_collector"`
	Paused         bool   `json:"paused"`
}

type DepositRequest struct {
	Account string `json:"account"`
	Asset   string `json:"asset,omitempty"`
	Amount  string `json:"amount"`
}

type TransferRequest struct {
	To     string `json:"to"`
	Asset  string `json:"asset,omitempty"`
	Amount string `json:"amount"`
}

type BalanceResponse struct {
	Account string `json:"account"`
	Asset   string `json:"asset"`
	Balance string `json:"balance"`
}
