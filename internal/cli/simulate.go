package cli

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	simulateCompra float64
	simulateVenta  float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-notification",
	Short: "模拟两次行情变动并触发通知",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateCompra <= 0 || simulateVenta <= 0 {
			return errors.New("--compra 与 --venta 必须大于 0")
		}

		compra := decimal.NewFromFloat(simulateCompra)
		venta := decimal.NewFromFloat(simulateVenta)
		return getApp().SimulateNotification(cmd.Context(), compra, venta)
	},
}

func init() {
	simulateCmd.Flags().Float64Var(&simulateCompra, "compra", 0, "模拟买入价 (pesos)")
	simulateCmd.Flags().Float64Var(&simulateVenta, "venta", 0, "模拟卖出价 (pesos)")
}
