package job

import (
	"math/rand"

	"github.com/talgya/villagesim/internal/agent"
	"github.com/talgya/villagesim/internal/resource"
)

const (
	merchantCapacity = 60.0
	surplusLevel     = 50.0 // ledger amount above which a good is tradeable
)

// basePrices is gold per unit fetched abroad.
var basePrices = map[resource.Type]float64{
	resource.Wood:          0.1,
	resource.Stone:         0.08,
	resource.FoodWheat:     0.15,
	resource.FoodBerry:     0.12,
	resource.FoodFish:      0.2,
	resource.Clay:          0.1,
	resource.Herb:          0.3,
	resource.IronOre:       0.25,
	resource.IronIngot:     0.8,
	resource.Potion:        1.5,
	resource.BasicTools:    2.0,
	resource.AdvancedTools: 4.0,
	resource.Weapons:       3.0,
}

// MerchantJob turns resource surplus into gold: load up at the market,
// trek to the trade route at the map edge, sell, and come home with coin.
type MerchantJob struct {
	base
	market     fieldPos
	hasMarket  bool
	TradeGoods map[resource.Type]float64
	outbound   bool
	GoldEarned float64
}

// NewMerchant builds the trading occupation.
func NewMerchant(rng *rand.Rand) *MerchantJob {
	return &MerchantJob{
		base: base{
			kind: Merchant,
			modifiers: map[agent.Skill]float64{
				agent.SkillNegotiation: 0.8,
				agent.SkillCharisma:    0.5,
				agent.SkillPerception:  0.2,
			},
			rng: rng,
		},
		TradeGoods: make(map[resource.Type]float64),
	}
}

func (m *MerchantJob) goodsTotal() float64 {
	var total float64
	for _, amt := range m.TradeGoods {
		total += amt
	}
	return total
}

func (m *MerchantJob) DecideAction(a *agent.Agent, ctx *agent.Context) {
	if !m.hasMarket {
		m.market = fieldPos{ctx.Grid.Width() / 2, ctx.Grid.Height() / 2}
		m.hasMarket = true
	}
	if m.goodsTotal() > 0 {
		a.SetAction(agent.ActionTradeJourney, agent.At(ctx.Grid.Width()-1, m.market.y))
		return
	}
	a.SetAction(agent.ActionManageMarket, agent.At(m.market.x, m.market.y))
}

func (m *MerchantJob) ProgressAction(a *agent.Agent, ctx *agent.Context, dt float64) *agent.Event {
	switch a.Action {
	case agent.ActionManageMarket:
		return m.progressMarket(a, ctx)
	case agent.ActionTradeJourney:
		return m.progressJourney(a, ctx)
	}
	a.Progress = 1.0
	return nil
}

// progressMarket loads surplus stock into the trade pack. With nothing
// worth selling, the merchant minds the stall.
func (m *MerchantJob) progressMarket(a *agent.Agent, ctx *agent.Context) *agent.Event {
	if !a.MoveToward(ctx, m.market.x, m.market.y) {
		a.Progress = 0.5
		return nil
	}
	if a.Progress < 0.6 {
		a.Progress += 0.2
		a.ImproveSkill(agent.SkillCharisma, 0.002)
		return nil
	}
	a.Progress = 1.0

	loaded := make(map[string]float64)
	for t, price := range basePrices {
		room := merchantCapacity - m.goodsTotal()
		if room <= 0 {
			break
		}
		surplus := ctx.Resources.VillageAmount(t) - surplusLevel
		if surplus <= 0 || price <= 0 {
			continue
		}
		got := ctx.Resources.TakeFromVillageStorage(t, min(surplus, room))
		if got > 0 {
			m.TradeGoods[t] += got
			loaded[t.String()] = got
		}
	}
	if len(loaded) == 0 {
		return nil
	}
	m.outbound = true
	return &agent.Event{Agent: a.Name, Action: "loaded_trade_goods", Fields: map[string]any{
		"goods": loaded,
	}}
}

// progressJourney walks the caravan out to the trade route, sells, and
// returns to the market with the gold.
func (m *MerchantJob) progressJourney(a *agent.Agent, ctx *agent.Context) *agent.Event {
	if m.outbound {
		if !a.MoveToward(ctx, a.Target.X, a.Target.Y) {
			a.Progress = 0.25
			return nil
		}
		// At the trade route: sell everything.
		negotiation := a.Skills[agent.SkillNegotiation]
		var earned float64
		sold := make(map[string]float64)
		for t, amt := range m.TradeGoods {
			earned += amt * basePrices[t] * (1.0 + negotiation*0.5)
			sold[t.String()] = amt
			delete(m.TradeGoods, t)
		}
		m.GoldEarned += earned
		m.outbound = false
		a.Target = agent.At(m.market.x, m.market.y)
		a.ImproveSkill(agent.SkillNegotiation, 0.01)
		a.ImproveSkill(agent.SkillCharisma, 0.005)
		a.Progress = 0.5
		return &agent.Event{Agent: a.Name, Action: "conducted_trade", Fields: map[string]any{
			"sold": sold, "gold": earned,
		}}
	}
	if !a.MoveToward(ctx, m.market.x, m.market.y) {
		a.Progress = 0.75
		return nil
	}
	a.Progress = 1.0
	if m.GoldEarned > 0 {
		deposit(ctx, resource.Gold, m.GoldEarned)
		earned := m.GoldEarned
		m.GoldEarned = 0
		return &agent.Event{Agent: a.Name, Action: "returned_with_gold", Fields: map[string]any{
			"gold": earned,
		}}
	}
	return nil
}

// Drop returns unsold trade goods and undeposited gold to the village.
func (m *MerchantJob) Drop(a *agent.Agent, ctx *agent.Context) {
	for t, amt := range m.TradeGoods {
		deposit(ctx, t, amt)
		delete(m.TradeGoods, t)
	}
	if m.GoldEarned > 0 {
		deposit(ctx, resource.Gold, m.GoldEarned)
		m.GoldEarned = 0
	}
}
