package organisation

import (
	"testing"

	"crewdesk/internal/stripe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The billing endpoints accept "free" and "pro" on the wire, so the parser
// must accept exactly those values and map them to a Stripe price.
func TestParseSubscriptionPlan(t *testing.T) {
	tests := []struct {
		input   string
		plan    SubscriptionPlan
		priceID stripe.PriceID
	}{
		{input: "free", plan: SubscriptionPlanFree, priceID: stripe.PriceIDFreePlan},
		{input: "pro", plan: SubscriptionPlanPro, priceID: stripe.PriceIDProPlan},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			plan, err := ParseSubscriptionPlan(test.input)
			require.NoError(t, err)
			assert.Equal(t, test.plan, plan)
			assert.Equal(t, test.priceID, PlanToPriceID[plan])
			assert.Equal(t, plan, PriceIDToPlan[test.priceID])
		})
	}

	t.Run("unknown", func(t *testing.T) {
		_, err := ParseSubscriptionPlan("enterprise")
		assert.Error(t, err)
	})
}
