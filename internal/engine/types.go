package engine

// Balance is the wallet's spendable state, denominated in satoshis.
type Balance struct {
	TrustedSats   uint64 `json:"trusted_sats"`
	LightningSats uint64 `json:"lightning_sats"`
	PendingSats   uint64 `json:"pending_sats"`
	AvailableSats uint64 `json:"available_sats"`
}

// ReceiveURI is a single-use BIP21 receive URI.
type ReceiveURI struct {
	Invoice     string  `json:"invoice"`
	Address     *string `json:"address"`
	AmountSats  *uint64 `json:"amount_sats"`
	FullURI     string  `json:"full_uri"`
	FromTrusted bool    `json:"from_trusted"`
}

// SendResult reports an initiated payment.
type SendResult struct {
	PaymentID  string `json:"payment_id"`
	AmountSats uint64 `json:"amount_sats"`
	Status     string `json:"status"`
}

// Transaction is one entry in the wallet's payment history.
type Transaction struct {
	ID          string  `json:"id"`
	Status      string  `json:"status"`
	Outbound    bool    `json:"outbound"`
	AmountSats  *uint64 `json:"amount_sats"`
	FeeSats     *uint64 `json:"fee_sats"`
	PaymentType string  `json:"payment_type"`
	Timestamp   int64   `json:"timestamp"`
}

// Channel describes one lightning channel.
type Channel struct {
	ChannelID            string  `json:"channel_id"`
	CounterpartyNodeID   string  `json:"counterparty_node_id"`
	FundingTxo           *string `json:"funding_txo"`
	IsChannelReady       bool    `json:"is_channel_ready"`
	IsUsable             bool    `json:"is_usable"`
	InboundCapacitySats  uint64  `json:"inbound_capacity_sats"`
	OutboundCapacitySats uint64  `json:"outbound_capacity_sats"`
	ChannelValueSats     uint64  `json:"channel_value_sats"`
}

// Tunables are the engine's operating limits.
type Tunables struct {
	TrustedBalanceLimitSats        uint64 `json:"trusted_balance_limit_sats"`
	RebalanceMinSats               uint64 `json:"rebalance_min_sats"`
	OnchainReceiveThresholdSats    uint64 `json:"onchain_receive_threshold_sats"`
	EnableAmountlessReceiveOnChain bool   `json:"enable_amountless_receive_on_chain"`
}

// NodeInfo is the engine's node identity and connectivity state.
type NodeInfo struct {
	NodeID       string   `json:"node_id"`
	LSPConnected bool     `json:"lsp_connected"`
	Tunables     Tunables `json:"tunables"`
}

// FeeEstimate is the projected cost of a payment.
type FeeEstimate struct {
	EstimatedFeeSats uint64 `json:"estimated_fee_sats"`
}

// ParseResult is the engine's interpretation of a payment string.
type ParseResult struct {
	Parsed string `json:"parsed"`
}
