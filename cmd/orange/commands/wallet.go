package commands

// The wallet query commands are thin request/response plumbing over the
// engine API: call one endpoint, print the JSON result.

// BalanceCmd implements 'balance'.
type BalanceCmd struct{}

func (c *BalanceCmd) Run(_ *Global, root *CLI) error {
	client, _, err := engineClient(root)
	if err != nil {
		return err
	}
	ctx, cancel := queryContext()
	defer cancel()

	balance, err := client.Balance(ctx)
	if err != nil {
		return err
	}
	return printJSON(balance)
}

// ReceiveCmd implements 'receive'.
type ReceiveCmd struct {
	Amount *uint64 `help:"Amount in satoshis (optional)"`
}

func (c *ReceiveCmd) Run(_ *Global, root *CLI) error {
	client, _, err := engineClient(root)
	if err != nil {
		return err
	}
	ctx, cancel := queryContext()
	defer cancel()

	uri, err := client.Receive(ctx, c.Amount)
	if err != nil {
		return err
	}
	return printJSON(uri)
}

// ReceiveOfferCmd implements 'receive-offer'.
type ReceiveOfferCmd struct{}

func (c *ReceiveOfferCmd) Run(_ *Global, root *CLI) error {
	client, _, err := engineClient(root)
	if err != nil {
		return err
	}
	ctx, cancel := queryContext()
	defer cancel()

	offer, err := client.ReceiveOffer(ctx)
	if err != nil {
		return err
	}
	return printJSON(map[string]string{"offer": offer})
}

// SendCmd implements 'send'.
type SendCmd struct {
	Payment string  `arg:"" help:"Lightning invoice, on-chain address, BOLT12 offer, or BIP21 URI"`
	Amount  *uint64 `help:"Amount in satoshis (required for addresses and amountless offers)"`
}

func (c *SendCmd) Run(_ *Global, root *CLI) error {
	client, _, err := engineClient(root)
	if err != nil {
		return err
	}
	ctx, cancel := queryContext()
	defer cancel()

	result, err := client.Send(ctx, c.Payment, c.Amount)
	if err != nil {
		return err
	}
	return printJSON(result)
}

// ParseCmd implements 'parse'.
type ParseCmd struct {
	Payment string `arg:"" help:"Payment string to parse"`
}

func (c *ParseCmd) Run(_ *Global, root *CLI) error {
	client, _, err := engineClient(root)
	if err != nil {
		return err
	}
	ctx, cancel := queryContext()
	defer cancel()

	parsed, err := client.Parse(ctx, c.Payment)
	if err != nil {
		return err
	}
	return printJSON(parsed)
}

// TransactionsCmd implements 'transactions'.
type TransactionsCmd struct{}

func (c *TransactionsCmd) Run(_ *Global, root *CLI) error {
	client, _, err := engineClient(root)
	if err != nil {
		return err
	}
	ctx, cancel := queryContext()
	defer cancel()

	txs, err := client.Transactions(ctx)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"count":        len(txs),
		"transactions": txs,
	})
}

// ChannelsCmd implements 'channels'.
type ChannelsCmd struct{}

func (c *ChannelsCmd) Run(_ *Global, root *CLI) error {
	client, _, err := engineClient(root)
	if err != nil {
		return err
	}
	ctx, cancel := queryContext()
	defer cancel()

	channels, err := client.Channels(ctx)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"count":    len(channels),
		"channels": channels,
	})
}

// InfoCmd implements 'info'.
type InfoCmd struct{}

func (c *InfoCmd) Run(_ *Global, root *CLI) error {
	client, _, err := engineClient(root)
	if err != nil {
		return err
	}
	ctx, cancel := queryContext()
	defer cancel()

	info, err := client.Info(ctx)
	if err != nil {
		return err
	}
	return printJSON(info)
}

// EstimateFeeCmd implements 'estimate-fee'.
type EstimateFeeCmd struct {
	Payment string `arg:"" help:"Payment string to estimate fee for"`
}

func (c *EstimateFeeCmd) Run(_ *Global, root *CLI) error {
	client, _, err := engineClient(root)
	if err != nil {
		return err
	}
	ctx, cancel := queryContext()
	defer cancel()

	fee, err := client.EstimateFee(ctx, c.Payment)
	if err != nil {
		return err
	}
	return printJSON(fee)
}

// LightningAddressCmd implements 'lightning-address'.
type LightningAddressCmd struct{}

func (c *LightningAddressCmd) Run(_ *Global, root *CLI) error {
	client, _, err := engineClient(root)
	if err != nil {
		return err
	}
	ctx, cancel := queryContext()
	defer cancel()

	address, err := client.LightningAddress(ctx)
	if err != nil {
		return err
	}
	return printJSON(map[string]string{"lightning_address": address})
}

// RegisterLightningAddressCmd implements 'register-lightning-address'.
type RegisterLightningAddressCmd struct {
	Name string `arg:"" help:"Username for the lightning address (e.g. \"alice\" for alice@breez.tips)"`
}

func (c *RegisterLightningAddressCmd) Run(_ *Global, root *CLI) error {
	client, _, err := engineClient(root)
	if err != nil {
		return err
	}
	ctx, cancel := queryContext()
	defer cancel()

	address, err := client.RegisterLightningAddress(ctx, c.Name)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"registered":        true,
		"lightning_address": address,
	})
}

// InitCmd implements 'init'.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (c *InitCmd) Run(_ *Global, root *CLI) error {
	return initConfig(root.Config, c.Force)
}
