package service

import (
	"context"
	"io"

	"github.com/tealeg/xlsx"

	"github.com/example/gadgetcave/internal/datamodels/order"
)

var exportHeaders = []string{
	"ID", "User", "First name", "Last name", "Email", "Phone", "City", "Postal code",
	"Products", "Total", "Status", "Payment status", "Paid", "Transaction ID", "Created",
}

// ExportXLSX 按后台筛选条件导出订单到 Excel
func (s *OrderService) ExportXLSX(ctx context.Context, f order.Filter, w io.Writer) (int, error) {
	list, err := s.repos.Orders.List(ctx, f)
	if err != nil {
		return 0, err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return 0, err
	}
	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetValue(h)
	}
	for _, o := range list {
		row := sheet.AddRow()
		row.AddCell().SetValue(o.ID)
		row.AddCell().SetValue(o.CustomerName())
		row.AddCell().SetValue(o.Shipping.FirstName)
		row.AddCell().SetValue(o.Shipping.LastName)
		row.AddCell().SetValue(o.Shipping.Email)
		row.AddCell().SetValue(o.Shipping.Phone)
		row.AddCell().SetValue(o.Shipping.City)
		row.AddCell().SetValue(o.Shipping.PostalCode)
		row.AddCell().SetValue(o.ProductNames())
		row.AddCell().SetValue(o.TotalCost().StringFixed(2))
		row.AddCell().SetValue(string(o.Status))
		row.AddCell().SetValue(string(o.PaymentStatus))
		row.AddCell().SetBool(o.Paid)
		txn := ""
		if o.TransactionID != nil {
			txn = *o.TransactionID
		}
		row.AddCell().SetValue(txn)
		row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return len(list), file.Write(w)
}
