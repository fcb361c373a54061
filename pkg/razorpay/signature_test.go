package razorpay

import "testing"

func TestSignPaymentIsDeterministic(t *testing.T) {
	first := SignPayment("order_abc", "pay_xyz", "secret")
	second := SignPayment("order_abc", "pay_xyz", "secret")
	if first != second {
		t.Fatalf("signatures differ: %q vs %q", first, second)
	}
	if len(first) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(first))
	}
}

func TestVerifyPaymentSignature(t *testing.T) {
	const secret = "rzp_test_secret"
	signature := SignPayment("order_abc", "pay_xyz", secret)

	if !VerifyPaymentSignature("order_abc", "pay_xyz", signature, secret) {
		t.Fatal("expected valid signature to verify")
	}
	if VerifyPaymentSignature("order_abc", "pay_other", signature, secret) {
		t.Fatal("signature must bind the payment id")
	}
	if VerifyPaymentSignature("order_other", "pay_xyz", signature, secret) {
		t.Fatal("signature must bind the order id")
	}
	if VerifyPaymentSignature("order_abc", "pay_xyz", signature, "wrong_secret") {
		t.Fatal("signature must bind the key secret")
	}
}

func TestVerifyPaymentSignatureRejectsMutations(t *testing.T) {
	const secret = "rzp_test_secret"
	signature := SignPayment("order_abc", "pay_xyz", secret)

	for i := 0; i < len(signature); i++ {
		mutated := []byte(signature)
		if mutated[i] == 'a' {
			mutated[i] = 'b'
		} else {
			mutated[i] = 'a'
		}
		if VerifyPaymentSignature("order_abc", "pay_xyz", string(mutated), secret) {
			t.Fatalf("mutated signature at index %d verified", i)
		}
	}
}

func TestVerifyPaymentSignatureRejectsEmptyInputs(t *testing.T) {
	const secret = "rzp_test_secret"
	signature := SignPayment("order_abc", "pay_xyz", secret)

	cases := []struct {
		name      string
		orderID   string
		paymentID string
		signature string
	}{
		{"empty order id", "", "pay_xyz", signature},
		{"empty payment id", "order_abc", "", signature},
		{"empty signature", "order_abc", "pay_xyz", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if VerifyPaymentSignature(tc.orderID, tc.paymentID, tc.signature, secret) {
				t.Fatal("expected rejection")
			}
		})
	}
}

func TestPaymentSignaturePayload(t *testing.T) {
	got := PaymentSignaturePayload("order_abc", "pay_xyz")
	if got != "order_abc|pay_xyz" {
		t.Fatalf("unexpected payload %q", got)
	}
}
