package rules

import (
	"github.com/wonny/loancore/internal/contracts"
)

// Portfolio eligibility checks. Both batteries run against the full
// portfolio population (new purchases plus existing assets); SFY
// additionally receives the buy-only population for its l5 check.
//
// 비율 검사의 분모가 0이면 {value: 0, pass: true} — 빈 포트폴리오는
// 위반이 아님

// The one legacy program excluded from the SFY f3 price-band check
const sfyF3ExcludedProgram = "Unsec Std - 999 - 120"

type loanPred func(*contracts.Loan) bool

func filterChannel(loans []contracts.Loan, channel string) []contracts.Loan {
	var out []contracts.Loan
	for i := range loans {
		if loans[i].Channel == channel {
			out = append(out, loans[i])
		}
	}
	return out
}

func sumBalance(loans []contracts.Loan, pred loanPred) float64 {
	var sum float64
	for i := range loans {
		if pred == nil || pred(&loans[i]) {
			sum += loans[i].Balance
		}
	}
	return sum
}

func countIf(loans []contracts.Loan, pred loanPred) int {
	n := 0
	for i := range loans {
		if pred == nil || pred(&loans[i]) {
			n++
		}
	}
	return n
}

func safeRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func isType(types ...string) loanPred {
	return func(l *contracts.Loan) bool {
		for _, t := range types {
			if l.Type == t {
				return true
			}
		}
		return false
	}
}

func and(preds ...loanPred) loanPred {
	return func(l *contracts.Loan) bool {
		for _, p := range preds {
			if !p(l) {
				return false
			}
		}
		return true
	}
}

// stateDistribution shares balance by property state, as a fraction
// of total
func stateDistribution(loans []contracts.Loan, total float64) map[string]float64 {
	dist := make(map[string]float64)
	for i := range loans {
		state := loans[i].State
		if state == "" {
			continue
		}
		dist[state] += loans[i].Balance
	}
	for state := range dist {
		dist[state] = safeRatio(dist[state], total)
	}
	return dist
}

var primeCheckNames = []string{
	"check_a", "check_b1", "check_b3", "check_c", "check_d", "check_e",
	"check_f", "check_g", "check_h1", "check_h2", "check_h3",
	"check_i1", "check_i2", "check_j_state_dist",
	"check_l1", "check_l2", "check_l3", "check_l4", "check_s1",
}

var sfyCheckNames = []string{
	"check_a1", "check_a2", "check_b1", "check_b2", "check_b3", "check_b4",
	"check_c1", "check_d1", "check_d2", "check_d3", "check_d4",
	"check_e1", "check_e2", "check_e3", "check_e4",
	"check_f1", "check_f2", "check_f3", "check_f4",
	"check_g1", "check_g2", "check_h_state_dist",
	"check_j1", "check_j2", "check_j3", "check_j4",
	"check_l1", "check_l2", "check_l3", "check_l4", "check_s1",
}

// emptyResult marks every check of an empty population as passing
func emptyResult(names []string) contracts.EligibilityResult {
	result := make(contracts.EligibilityResult, len(names))
	for _, name := range names {
		result[name] = contracts.EligibilityCheck{Value: 0, Pass: true}
	}
	return result
}

// CheckEligibilityPrime runs the prime battery against the full
// portfolio population
func CheckEligibilityPrime(all []contracts.Loan, th *PrimeThresholds) contracts.EligibilityResult {
	prime := filterChannel(all, contracts.ChannelPrime)
	total := sumBalance(prime, nil)
	if total == 0 {
		return emptyResult(primeCheckNames)
	}

	result := make(contracts.EligibilityResult)
	ratio := func(pred loanPred) float64 {
		return safeRatio(sumBalance(prime, pred), total)
	}
	set := func(name string, value float64, pass bool) {
		result[name] = contracts.EligibilityCheck{Value: value, Pass: pass}
	}

	notRepurchase := func(l *contracts.Loan) bool { return !l.Repurchase }
	lowFICO := func(l *contracts.Loan) bool { return l.FICO < 700 }
	shortTerm := func(l *contracts.Loan) bool { return l.Term <= 144 }
	longTerm := func(l *contracts.Loan) bool { return l.Term > 144 }

	// concentration by term/type/FICO
	a := ratio(and(notRepurchase, shortTerm, isType("standard"), lowFICO))
	set("check_a", a, a < th.A)

	b1 := ratio(and(notRepurchase, longTerm, isType("standard"), lowFICO))
	set("check_b1", b1, b1 < th.B1)

	b3 := safeRatio(
		float64(countIf(prime, and(longTerm, isType("standard"), lowFICO))),
		float64(len(prime)))
	set("check_b3", b3, b3 < th.B3)

	c := ratio(and(longTerm, isType("standard"), func(l *contracts.Loan) bool { return l.FICO >= 700 }))
	set("check_c", c, c < th.C)

	d := ratio(isType("hybrid"))
	set("check_d", d, d < th.D)
	e := ratio(isType("ninp"))
	set("check_e", e, e < th.E)
	f := ratio(isType("epni"))
	set("check_f", f, f < th.F)
	g := ratio(isType("wpdi"))
	set("check_g", g, g < th.G)

	// lender price
	var h1 float64
	for i := range prime {
		if prime[i].LenderPricePct > h1 {
			h1 = prime[i].LenderPricePct
		}
	}
	set("check_h1", h1, h1 <= th.H1)

	h2 := ratio(func(l *contracts.Loan) bool {
		return l.LenderPricePct > 100 && l.LenderPricePct <= 103
	})
	set("check_h2", h2, h2 < th.H2)

	var dealerFeeWeighted float64
	for i := range prime {
		dealerFeeWeighted += prime[i].DealerFee * prime[i].Balance
	}
	h3 := safeRatio(dealerFeeWeighted, total)
	set("check_h3", h3, h3 < th.H3)

	// balance concentration
	i1 := ratio(func(l *contracts.Loan) bool { return l.Balance > 50000 })
	set("check_i1", i1, i1 < th.I1)
	i2 := safeRatio(total, float64(len(prime)))
	set("check_i2", i2, i2 < th.I2)

	result["check_j_state_dist"] = contracts.EligibilityCheck{
		Pass:         true,
		Distribution: stateDistribution(prime, total),
	}

	// FICO concentration
	l1 := ratio(func(l *contracts.Loan) bool { return l.FICO < 680 })
	set("check_l1", l1, l1 < th.L1)
	l2 := ratio(lowFICO)
	set("check_l2", l2, l2 < th.L2)

	var ficoWeighted, ficoSum float64
	for i := range prime {
		ficoWeighted += prime[i].Balance * float64(prime[i].FICO)
		ficoSum += float64(prime[i].FICO)
	}
	l3 := safeRatio(ficoWeighted, total)
	set("check_l3", l3, l3 > th.L3)
	set("check_l4", safeRatio(ficoSum, float64(len(prime))), true)

	// new program share of the non-repurchase book
	nonRepurchaseTotal := sumBalance(prime, notRepurchase)
	s1 := safeRatio(sumBalance(prime, and(notRepurchase, func(l *contracts.Loan) bool { return l.NewPrograms })), nonRepurchaseTotal)
	set("check_s1", s1, s1 < th.S1)

	return result
}

// CheckEligibilitySFY runs the SFY battery: the portfolio-wide checks
// against all loans, plus the buy-only l5 share
func CheckEligibilitySFY(all, buy []contracts.Loan, th *SFYThresholds) contracts.EligibilityResult {
	sfy := filterChannel(all, contracts.ChannelSFY)
	total := sumBalance(sfy, nil)
	if total == 0 {
		return emptyResult(sfyCheckNames)
	}

	result := make(contracts.EligibilityResult)
	ratio := func(pred loanPred) float64 {
		return safeRatio(sumBalance(sfy, pred), total)
	}
	set := func(name string, value float64, pass bool) {
		result[name] = contracts.EligibilityCheck{Value: value, Pass: pass}
	}

	// hybrid
	a1 := ratio(isType("hybrid"))
	set("check_a1", a1, a1 < th.A1)
	a2 := ratio(and(isType("hybrid"), func(l *contracts.Loan) bool { return l.APR < 7.0 }))
	set("check_a2", a2, a2 < th.A2)

	// ninp promo/term bands
	b1 := ratio(isType("ninp"))
	set("check_b1", b1, b1 < th.B1)
	b2 := ratio(and(isType("ninp"), func(l *contracts.Loan) bool { return l.PromoTerm > 6 }))
	set("check_b2", b2, b2 < th.B2)
	b3 := ratio(and(isType("ninp"), func(l *contracts.Loan) bool { return l.PromoTerm > 12 }))
	set("check_b3", b3, b3 < th.B3)
	b4 := ratio(and(isType("ninp"), func(l *contracts.Loan) bool { return l.Term > 84 }))
	set("check_b4", b4, b4 <= th.B4)

	c1 := ratio(isType("epni"))
	set("check_c1", c1, c1 <= th.C1)

	// wpdi incl. broker-dealer variants
	d1 := ratio(isType("wpdi"))
	set("check_d1", d1, d1 <= th.D1)
	d2 := ratio(isType("wpdi", "wpdi_bd"))
	set("check_d2", d2, d2 <= th.D2)
	promo12 := func(l *contracts.Loan) bool { return l.PromoTerm >= 12 }
	d3 := ratio(and(isType("wpdi"), promo12))
	set("check_d3", d3, d3 <= th.D3)
	d4 := ratio(and(isType("wpdi", "wpdi_bd"), promo12))
	set("check_d4", d4, d4 <= th.D4)

	// standard long-term bands
	term120 := func(l *contracts.Loan) bool { return l.Term > 120 }
	term144 := func(l *contracts.Loan) bool { return l.Term > 144 }
	e1 := ratio(and(isType("standard"), term120))
	set("check_e1", e1, e1 <= th.E1)
	e2 := ratio(and(isType("standard", "standard_bd"), term120))
	set("check_e2", e2, e2 <= th.E2)
	e3 := ratio(and(isType("standard"), term144))
	set("check_e3", e3, e3 <= th.E3)
	e4 := ratio(and(isType("standard", "standard_bd"), term144))
	set("check_e4", e4, e4 <= th.E4)

	// lender price
	var f1 float64
	for i := range sfy {
		if sfy[i].LenderPricePct > f1 {
			f1 = sfy[i].LenderPricePct
		}
	}
	set("check_f1", f1, f1 <= th.F1)
	premium := func(l *contracts.Loan) bool {
		return l.LenderPricePct > 100 && l.LenderPricePct <= 103
	}
	f2 := ratio(premium)
	set("check_f2", f2, f2 <= th.F2)
	f3 := ratio(and(premium, func(l *contracts.Loan) bool { return l.Program != sfyF3ExcludedProgram }))
	set("check_f3", f3, f3 <= th.F3)

	var dealerFeeWeighted float64
	for i := range sfy {
		dealerFeeWeighted += sfy[i].DealerFee * sfy[i].Balance
	}
	f4 := safeRatio(dealerFeeWeighted, total)
	set("check_f4", f4, f4 <= th.F4)

	// balance concentration
	g1 := ratio(func(l *contracts.Loan) bool { return l.Balance > 50000 })
	set("check_g1", g1, g1 <= th.G1)
	g2 := safeRatio(total, float64(len(sfy)))
	set("check_g2", g2, g2 <= th.G2)

	result["check_h_state_dist"] = contracts.EligibilityCheck{
		Pass:         true,
		Distribution: stateDistribution(sfy, total),
	}

	// FICO concentration
	j1 := ratio(func(l *contracts.Loan) bool { return l.FICO < 680 })
	set("check_j1", j1, j1 <= th.J1)
	j2 := ratio(func(l *contracts.Loan) bool { return l.FICO < 700 })
	set("check_j2", j2, j2 <= th.J2)
	var ficoWeighted, ficoSum float64
	for i := range sfy {
		ficoWeighted += sfy[i].Balance * float64(sfy[i].FICO)
		ficoSum += float64(sfy[i].FICO)
	}
	j3 := safeRatio(ficoWeighted, total)
	set("check_j3", j3, j3 >= th.J3)
	j4 := safeRatio(ficoSum, float64(len(sfy)))
	set("check_j4", j4, j4 >= th.J4)

	// broker-dealer type shares; l3/l4 measure purchase price across
	// the whole portfolio, not just SFY
	l1 := ratio(isType("wpdi_bd"))
	set("check_l1", l1, l1 <= th.L1)
	set("check_l2", ratio(isType("standard_bd")), true)

	allPurchase := 0.0
	for i := range all {
		allPurchase += all[i].PurchasePrice
	}
	bdPurchase := func(pred loanPred) float64 {
		var sum float64
		for i := range all {
			if pred(&all[i]) {
				sum += all[i].PurchasePrice
			}
		}
		return sum
	}
	l3 := safeRatio(bdPurchase(isType("standard_bd", "wpdi_bd")), allPurchase)
	set("check_l3", l3, true)
	l4 := safeRatio(bdPurchase(and(isType("standard_bd", "wpdi_bd"), func(l *contracts.Loan) bool { return !l.ExcessAsset })), allPurchase)
	set("check_l4", l4, true)

	// buy-only standard_bd share
	buySFY := filterChannel(buy, contracts.ChannelSFY)
	if len(buySFY) > 0 {
		buyTotal := sumBalance(buySFY, nil)
		l5 := safeRatio(sumBalance(buySFY, isType("standard_bd")), buyTotal)
		result["check_l5"] = contracts.EligibilityCheck{Value: l5, Pass: true}
	}

	// new program share of the non-repurchase SFY book
	notRepurchase := func(l *contracts.Loan) bool { return !l.Repurchase }
	s1 := safeRatio(
		sumBalance(sfy, and(notRepurchase, func(l *contracts.Loan) bool { return l.NewPrograms })),
		sumBalance(sfy, notRepurchase))
	set("check_s1", s1, s1 < th.S1)

	return result
}
