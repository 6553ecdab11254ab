package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/Katyxel/add-basket/internal/basket"
	"github.com/Katyxel/add-basket/internal/bootstrap"
	"github.com/Katyxel/add-basket/internal/catalog"
	"github.com/Katyxel/add-basket/internal/config"
	"github.com/Katyxel/add-basket/internal/notify"
	"github.com/Katyxel/add-basket/internal/service"
	"github.com/Katyxel/add-basket/internal/session"
	"github.com/Katyxel/add-basket/internal/store"
	"github.com/Katyxel/add-basket/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	ErrRowIndex        = errors.New("row index out of range")
	ErrProductNotFound = errors.New("product not in catalog")
)

// app holds what the commands share. Tests preset slot, products and
// notifier so that nothing is opened from config.
type app struct {
	out        io.Writer
	configPath string
	sessionID  string
	policy     service.DuplicatePolicy

	log      *zap.Logger
	slot     store.Slot
	products catalog.Lister
	notifier notify.Notifier
	closers  []func()
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "basketctl",
		Short: "Drive a storefront cart session from the terminal",
		Long: `basketctl loads a cart session from the configured slot backend,
applies one action and prints the basket.

Rows are addressed by their 1-based position in "basketctl list".`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "optional YAML config file")
	root.PersistentFlags().StringVar(&a.sessionID, "session", "", "cart session id (empty uses the shared \"products\" key)")

	root.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := a.run(cmd.Context(), nil)
				return err
			},
		},
		&cobra.Command{
			Use:   "add <product-id>",
			Short: "Add a catalog product to the cart",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.add(cmd.Context(), args[0])
			},
		},
		a.rowCmd("inc", "Increase a row's quantity", (*service.CartService).Increment),
		a.rowCmd("dec", "Decrease a row's quantity", (*service.CartService).Decrement),
		a.rowCmd("rm", "Remove a row", (*service.CartService).Delete),
	)
	return root
}

func (a *app) rowCmd(use, short string, action func(*service.CartService, context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <row-index>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: %q", ErrRowIndex, args[0])
			}
			_, err = a.run(cmd.Context(), func(ctx context.Context, cart *service.CartService) error {
				items := cart.State().Items
				if n < 1 || n > len(items) {
					return fmt.Errorf("%w: %d (cart has %d rows)", ErrRowIndex, n, len(items))
				}
				return action(cart, ctx, items[n-1].RowID)
			})
			return err
		},
	}
}

func (a *app) add(ctx context.Context, productID string) error {
	products, err := a.products.List(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	for _, p := range products {
		if p.ID != productID {
			continue
		}
		_, err := a.run(ctx, func(ctx context.Context, cart *service.CartService) error {
			return cart.AddToCart(ctx, p)
		})
		return err
	}
	return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
}

// run loads the session cart, applies action and prints the result.
func (a *app) run(ctx context.Context, action func(context.Context, *service.CartService) error) (basket.State, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = session.WithID(ctx, a.sessionID)

	key := store.DefaultKey
	if a.sessionID != "" {
		key = store.SessionKey(a.sessionID)
	}
	l := a.log.With(zap.String("key", key))
	cart := service.NewCartService(store.NewCartStore(a.slot, key, l), basket.New(), a.notifier, l, a.policy)
	if err := cart.Load(ctx); err != nil {
		return basket.State{}, err
	}

	if action != nil {
		if err := action(ctx, cart); err != nil {
			return basket.State{}, err
		}
	}

	state := cart.State()
	return state, basket.WriteTable(a.out, state)
}

func (a *app) open(ctx context.Context) error {
	if a.log == nil {
		a.log = zap.NewNop()
	}
	if a.slot != nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	policy, err := service.ParseDuplicatePolicy(cfg.DuplicatePolicy)
	if err != nil {
		return err
	}
	a.policy = policy

	l, err := logger.New(cfg.LogLevel, "console")
	if err != nil {
		return err
	}
	a.log = l

	slot, closeSlot, err := bootstrap.OpenSlot(ctx, cfg, l)
	if err != nil {
		return err
	}
	notifier, closeNotifier := bootstrap.Notifier(cfg, l)

	a.slot = slot
	a.notifier = notifier
	a.products = catalog.NewClient(cfg.CatalogURL, cfg.RequestTimeout, l)
	a.closers = append(a.closers, closeNotifier, closeSlot)
	return nil
}

func (a *app) close() {
	for _, fn := range a.closers {
		fn()
	}
	a.closers = nil
	_ = a.log.Sync()
}
