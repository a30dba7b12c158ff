package strategy

import (
	"fmt"
	"math"

	"github.com/bobmcallan/realvest/internal/finance"
	"github.com/bobmcallan/realvest/internal/models"
)

// LadderAssumptions describe the typical rental bought by RentalLadder.
type LadderAssumptions struct {
	AveragePrice        float64
	RentRatio           float64 // monthly rent as a fraction of price
	MinRent             float64
	MaxRent             float64
	MonthlyExpenses     float64
	DownPaymentPercent  float64
	ClosingCostPercent  float64
	InterestRatePercent float64
	TermYears           float64
	CashReserve         float64 // kept on hand after every purchase
	SetupMonths         int
	MaxSteps            int
}

// DefaultLadderAssumptions returns assumptions for a low-cost rental market.
func DefaultLadderAssumptions() LadderAssumptions {
	return LadderAssumptions{
		AveragePrice:        65000,
		RentRatio:           0.0125,
		MinRent:             1000,
		MaxRent:             1600,
		MonthlyExpenses:     350,
		DownPaymentPercent:  20,
		ClosingCostPercent:  3,
		InterestRatePercent: 7,
		TermYears:           30,
		CashReserve:         500,
		SetupMonths:         1,
		MaxSteps:            100,
	}
}

// RentalLadder builds the conservative strategy: buy the typical rental
// whenever cash allows, otherwise wait for rent and contributions to cover the
// next one, until the goal income or the horizon is reached. Net income per
// rental is estimated with the operating cost rates of sim, without growth.
// Rent and fixed expenses stated in the goal replace the assumed ones.
// Actions that fail to convert are left out and returned in errs.
func RentalLadder(goal *models.Goal, sim models.Simulation, a LadderAssumptions) (*models.Strategy, []models.Transaction, []error) {
	if goal.ExpensesPerUnit > 0 {
		a.MonthlyExpenses = goal.ExpensesPerUnit
	}
	price := a.AveragePrice
	rent := math.Min(a.MaxRent, math.Max(a.MinRent, price*a.RentRatio))
	if goal.RentPerUnit > 0 {
		rent = goal.RentPerUnit
	}
	loanAmount := price * (1 - a.DownPaymentPercent/100)
	payment := finance.MonthlyPayment(loanAmount, a.InterestRatePercent, a.TermYears)
	closing := math.Round(price*a.ClosingCostPercent) / 100
	opex := finance.OperatingExpenses(price, rent, finance.ExpenseRates{
		PropertyTaxPercent: sim.PropertyTaxRatePercent,
		InsurancePercent:   sim.InsuranceRatePercent,
		MaintenancePercent: sim.MaintenanceRatePercent,
		VacancyPercent:     sim.VacancyRatePercent,
		ManagementPercent:  sim.ManagementRatePercent,
		FixedMonthly:       a.MonthlyExpenses,
	})
	netPerRental := rent - opex.Total - payment
	cashNeeded := price*a.DownPaymentPercent/100 + closing

	strategy := &models.Strategy{
		Name:        "Rental ladder",
		Description: "Steady rental acquisitions funded by starting capital, rent and contributions.",
		Source:      SourceRentalLadder,
	}

	var (
		month   int
		cash    = goal.StartingCapital
		income  float64
		bought  int
		horizon = goal.TimeHorizonMonths
	)
	for step := 0; step < a.MaxSteps && income < goal.TargetMonthlyIncome && month < horizon; step++ {
		if cash >= cashNeeded+a.CashReserve {
			bought++
			strategy.Actions = append(strategy.Actions, models.ProposedAction{
				Month:    month,
				Action:   "buy",
				Property: fmt.Sprintf("Rental %d", bought),
				Details: map[string]float64{
					"price":         price,
					"down_percent":  a.DownPaymentPercent,
					"rent":          rent,
					"expenses":      a.MonthlyExpenses,
					"rate":          a.InterestRatePercent,
					"term":          a.TermYears,
					"closing_costs": closing,
				},
			})
			cash -= cashNeeded
			income += netPerRental
			month += a.SetupMonths
			continue
		}

		accumulation := income + goal.MonthlyContributions
		if accumulation <= 0 {
			break
		}
		wait := int(math.Ceil((cashNeeded + a.CashReserve - cash) / accumulation))
		if month+wait > horizon {
			break
		}
		strategy.Actions = append(strategy.Actions, models.ProposedAction{
			Month:  month,
			Action: "wait",
			Note:   fmt.Sprintf("save for %d months", wait),
		})
		month += wait
		cash += float64(wait) * accumulation
	}

	txs, errs := ToTransactions(strategy.Actions)
	return strategy, txs, errs
}
