package services

import (
	"encoding/json"
	"time"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"fisiocare-backend/internal/models"
)

// MidtransGateway adalah implementasi PaymentGateway di atas Midtrans Snap
type MidtransGateway struct {
	client snap.Client
}

func NewMidtransGateway(serverKey string, production bool) *MidtransGateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	g := &MidtransGateway{}
	g.client.New(serverKey, env)
	return g
}

func (g *MidtransGateway) CreateCharge(b *models.Booking, customer *models.User) (*ChargeResult, error) {
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID: b.PaymentOrderID,
			// Midtrans minta int64 rupiah bulat
			GrossAmt: b.TotalPrice.IntPart(),
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: customer.FullName,
			Email: customer.Email,
			Phone: customer.Phone,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    b.PaymentOrderID,
				Name:  "Paket Sesi Fisioterapi",
				Price: b.TotalPrice.IntPart(),
				Qty:   1,
			},
		},
	}

	resp, errSnap := g.client.CreateTransaction(req)
	if errSnap != nil {
		return nil, errSnap
	}

	instruction, _ := json.Marshal(map[string]string{
		"snap_token":   resp.Token,
		"redirect_url": resp.RedirectURL,
	})
	// Snap token default berlaku 24 jam
	expiredAt := time.Now().Add(24 * time.Hour)

	return &ChargeResult{
		Provider:    "midtrans",
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
		Instruction: instruction,
		ExpiredAt:   &expiredAt,
	}, nil
}
