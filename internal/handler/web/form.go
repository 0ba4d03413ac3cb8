package web

import (
	"CryptoLiquidity/internal/domain/models"
	"CryptoLiquidity/pkg/util"
)

const (
	pageTitle   = "Cryptocurrency Liquidity Prediction"
	pageIntro   = "Enter cryptocurrency market data to predict the liquidity ratio (volume to market cap)."
	submitLabel = "Predict Liquidity Ratio"
)

type fieldSpec struct {
	name  string
	label string
	step  string
	min   string
	set   func(r *models.PredictRequest, v float64)
}

// formFields are the inputs in display order.
var formFields = []fieldSpec{
	{"price", "Current Price (USD)", "0.01", "0", func(r *models.PredictRequest, v float64) { r.Price = v }},
	{"change_1h", "1h Price Change (%)", "0.01", "", func(r *models.PredictRequest, v float64) { r.Change1h = v }},
	{"change_24h", "24h Price Change (%)", "0.01", "", func(r *models.PredictRequest, v float64) { r.Change24h = v }},
	{"change_7d", "7d Price Change (%)", "0.01", "", func(r *models.PredictRequest, v float64) { r.Change7d = v }},
	{"volume_24h", "24h Trading Volume (USD)", "any", "0", func(r *models.PredictRequest, v float64) { r.Volume24h = v }},
	{"market_cap", "Market Capitalization (USD)", "any", "0", func(r *models.PredictRequest, v float64) { r.MarketCap = v }},
}

// FieldView is one rendered input.
type FieldView struct {
	Name  string
	Label string
	Value string
	Step  string
	Min   string
	Error string
}

// ResultView is a successful prediction.
type ResultView struct {
	Display string
	Advice  string
}

// PageView is the data for index.html.
type PageView struct {
	Title  string
	Intro  string
	Submit string
	Fields []FieldView
	Result *ResultView
	Error  string
}

func newPage(values map[string]string) *PageView {
	p := &PageView{
		Title:  pageTitle,
		Intro:  pageIntro,
		Submit: submitLabel,
		Fields: make([]FieldView, len(formFields)),
	}
	for i, f := range formFields {
		v, ok := values[f.name]
		if !ok {
			v = "0"
		}
		p.Fields[i] = FieldView{Name: f.name, Label: f.label, Value: v, Step: f.step, Min: f.min}
	}
	return p
}

func (p *PageView) setFieldError(name, msg string) {
	for i := range p.Fields {
		if p.Fields[i].Name == name {
			p.Fields[i].Error = msg
			return
		}
	}
}

// parseForm reads the submitted values. Blank inputs count as 0.
func parseForm(values map[string]string) (*models.PredictRequest, map[string]string) {
	req := &models.PredictRequest{}
	var errs map[string]string
	for _, f := range formFields {
		v, err := util.ParseFloatDefault(values[f.name], 0)
		if err != nil {
			if errs == nil {
				errs = make(map[string]string)
			}
			errs[f.name] = f.label + ": " + err.Error()
			continue
		}
		f.set(req, v)
	}
	return req, errs
}
