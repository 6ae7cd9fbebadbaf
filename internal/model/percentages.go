package model

import "encoding/json"

// MainPercentages maps each main category to a share of net income in
// [0,100]. The vector should sum to 100 but this is not enforced.
type MainPercentages [numCategories]float64

// SavingsPercentages maps each savings sub-category to a share of the
// Savings pool in [0,100].
type SavingsPercentages [numSavingsCategories]float64

// DefaultMainPercentages returns Fixed 50, Flexible 15, Savings 25, Charity 10.
func DefaultMainPercentages() MainPercentages {
	var p MainPercentages
	p[Fixed] = 50
	p[Flexible] = 15
	p[Savings] = 25
	p[Charity] = 10
	return p
}

// DefaultSavingsPercentages returns RainyDay 40, Retirement 30, HSA 15,
// BigPurchases 15.
func DefaultSavingsPercentages() SavingsPercentages {
	var p SavingsPercentages
	p[RainyDay] = 40
	p[Retirement] = 30
	p[HSA] = 15
	p[BigPurchases] = 15
	return p
}

// Total returns the sum of all shares.
func (p MainPercentages) Total() float64 {
	var sum float64
	for _, v := range p {
		sum += v
	}
	return sum
}

// Operating returns the Fixed plus Flexible share as a fraction.
func (p MainPercentages) Operating() float64 {
	return (p[Fixed] + p[Flexible]) / 100
}

// Total returns the sum of all shares.
func (p SavingsPercentages) Total() float64 {
	var sum float64
	for _, v := range p {
		sum += v
	}
	return sum
}

// MarshalJSON encodes the vector as an object keyed by category key.
func (p MainPercentages) MarshalJSON() ([]byte, error) {
	out := make(map[string]float64, numCategories)
	for _, c := range Categories {
		out[c.Key()] = p[c]
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an object keyed by category key. Keys not present
// keep their current value.
func (p *MainPercentages) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, v := range raw {
		if c, ok := ParseCategory(key); ok {
			p[c] = v
		}
	}
	return nil
}

// MarshalJSON encodes the vector as an object keyed by sub-category key.
func (p SavingsPercentages) MarshalJSON() ([]byte, error) {
	out := make(map[string]float64, numSavingsCategories)
	for _, s := range SavingsCategories {
		out[s.Key()] = p[s]
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an object keyed by sub-category key. Keys not
// present keep their current value.
func (p *SavingsPercentages) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, v := range raw {
		if s, ok := ParseSavingsCategory(key); ok {
			p[s] = v
		}
	}
	return nil
}
