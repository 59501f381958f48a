package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// =============================================================================
// EMAIL SUMMARY
// =============================================================================

// Locale selects the email language.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleMS Locale = "ms"
	LocaleZH Locale = "zh"
)

// ParseLocale maps a language tag to a supported locale. Anything else
// is English.
func ParseLocale(s string) Locale {
	tag := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(tag, "ms"), strings.HasPrefix(tag, "bm"):
		return LocaleMS
	case strings.HasPrefix(tag, "zh"):
		return LocaleZH
	}
	return LocaleEN
}

// Message is a rendered email ready for a mailer.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

const calculatorURL = "https://cukaiku.vercel.app/calculator"

type emailRow struct {
	Label string
	Value string
	Bold  bool
}

type emailView struct {
	Year       int
	Greeting   string
	Headline   string
	Summary    string
	Note       string
	Rows       []emailRow
	CTA        string
	CTAURL     string
	Disclaimer string
}

type emailStrings struct {
	subject    string
	greeting   string
	summary    string
	note       string
	disclaimer string
	cta        string
	rows       [5]string // income, reliefs, chargeable, saved, pcb
}

func localeStrings(l Locale, rep *Report) emailStrings {
	r, s := rep.Result, rep.Settlement
	form := r.FormType
	year := r.Year

	var balance string
	switch l {
	case LocaleMS:
		balance = "Baki kena dibayar: " + RM(s.BalanceDue)
		if s.Refund {
			balance = "Anggaran bayaran balik: " + RM(s.BalanceDue)
		}
		return emailStrings{
			subject:    fmt.Sprintf("Panduan Borang %s TA %d Anda — CukaiKu", form, year),
			greeting:   "Panduan borang LHDN peribadi anda dilampirkan.",
			summary:    fmt.Sprintf("Anggaran cukai: %s · Jumlah pelepasan: %s · %s", RM(r.FinalTax), RM(r.TotalRelief), balance),
			note:       fmt.Sprintf("Gunakan panduan Borang %s anda sebagai rujukan semasa e-Filing di MyTax (mytax.hasil.gov.my).", form),
			disclaimer: "Ini adalah anggaran sahaja. Sahkan dengan LHDN atau ejen cukai berlesen sebelum pemfailan.",
			cta:        "Kira semula di CukaiKu",
			rows:       [5]string{"Jumlah pendapatan", "Jumlah pelepasan", "Pendapatan bercukai", "Cukai dijimatkan", "PCB yang ditolak"},
		}
	case LocaleZH:
		balance = "应付余额: " + RM(s.BalanceDue)
		if s.Refund {
			balance = "预计退款: " + RM(s.BalanceDue)
		}
		return emailStrings{
			subject:    fmt.Sprintf("您的%d评税年%s表格指南 — CukaiKu", year, form),
			greeting:   "您的个性化LHDN表格指南已附上。",
			summary:    fmt.Sprintf("预估税款: %s · 总减免: %s · %s", RM(r.FinalTax), RM(r.TotalRelief), balance),
			note:       fmt.Sprintf("在MyTax (mytax.hasil.gov.my) 上报税时，可将Borang %s指南作为参考。", form),
			disclaimer: "这仅为估算。请在报税前向LHDN或持牌税务代理确认。",
			cta:        "在CukaiKu重新计算",
			rows:       [5]string{"总收入", "总减免", "应课税收入", "节省税款", "已扣PCB"},
		}
	}

	balance = "Balance payable: " + RM(s.BalanceDue)
	if s.Refund {
		balance = "Estimated refund: " + RM(s.BalanceDue)
	}
	return emailStrings{
		subject:    fmt.Sprintf("Your YA %d Form %s Guide — CukaiKu", year, form),
		greeting:   "Your personalised LHDN form guide is ready.",
		summary:    fmt.Sprintf("Estimated tax: %s · Total reliefs: %s · %s", RM(r.FinalTax), RM(r.TotalRelief), balance),
		note:       fmt.Sprintf("Use your Borang %s guide as a reference when filing on MyTax (mytax.hasil.gov.my).", form),
		disclaimer: "This is an estimate only. Verify with LHDN or a licensed tax agent before filing.",
		cta:        "Recalculate on CukaiKu",
		rows:       [5]string{"Total income", "Total reliefs claimed", "Chargeable income", "Tax saved vs zero relief", "PCB deducted"},
	}
}

var emailTemplate = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><meta name="viewport" content="width=device-width,initial-scale=1"></head>
<body style="margin:0;padding:0;background:#f8fafc;font-family:system-ui,-apple-system,sans-serif;">
  <div style="max-width:560px;margin:0 auto;padding:32px 16px;">
    <div style="text-align:center;margin-bottom:28px;">
      <div style="font-size:26px;font-weight:800;color:#0f172a;">CukaiKu</div>
      <div style="font-size:12px;color:#94a3b8;margin-top:2px;">Malaysian Tax Relief Calculator &middot; YA {{.Year}}</div>
    </div>
    <p style="color:#0f172a;font-size:15px;font-weight:600;margin:0 0 8px 0;">{{.Greeting}}</p>
    <div style="font-size:36px;font-weight:800;font-family:monospace;color:#0f172a;margin:0 0 12px 0;">{{.Headline}}</div>
    <p style="color:#475569;font-size:13px;line-height:1.6;margin:0 0 20px 0;">{{.Summary}}</p>
    <table style="width:100%;border-collapse:collapse;margin-bottom:20px;">
{{- range .Rows}}
      <tr>
        <td style="padding:8px 0;color:#64748b;{{if .Bold}}font-weight:bold;{{end}}">{{.Label}}</td>
        <td style="padding:8px 0;text-align:right;color:#0f172a;{{if .Bold}}font-weight:bold;{{end}}">{{.Value}}</td>
      </tr>
{{- end}}
    </table>
    <div style="background:#eff6ff;border:1px solid #bfdbfe;border-radius:10px;padding:16px;margin-bottom:24px;">
      <p style="color:#1e40af;font-size:13px;line-height:1.6;margin:0;">{{.Note}}</p>
    </div>
    <div style="text-align:center;margin-bottom:24px;">
      <a href="{{.CTAURL}}" style="display:inline-block;background:#0f172a;color:#ffffff;font-weight:600;font-size:13px;padding:10px 24px;border-radius:8px;text-decoration:none;">{{.CTA}}</a>
    </div>
    <p style="font-size:11px;color:#94a3b8;text-align:center;line-height:1.5;margin:0;">{{.Disclaimer}}</p>
  </div>
</body>
</html>
`))

// Email renders the localised summary email for one report.
func Email(l Locale, to string, rep *Report) (*Message, error) {
	str := localeStrings(l, rep)
	r, s := rep.Result, rep.Settlement

	rows := []emailRow{
		{Label: str.rows[0], Value: RM(r.TotalIncome)},
		{Label: str.rows[1], Value: RM(r.TotalRelief)},
		{Label: str.rows[2], Value: RM(r.ChargeableIncome)},
		{Label: str.rows[3], Value: RM(r.TaxSaved), Bold: true},
	}
	if s.HasPCB() {
		rows = append(rows, emailRow{Label: str.rows[4], Value: RM(s.PCB)})
	}

	view := emailView{
		Year:       r.Year,
		Greeting:   str.greeting,
		Headline:   RM(r.FinalTax),
		Summary:    str.summary,
		Note:       str.note,
		Rows:       rows,
		CTA:        str.cta,
		CTAURL:     calculatorURL,
		Disclaimer: str.disclaimer,
	}

	var html bytes.Buffer
	if err := emailTemplate.Execute(&html, view); err != nil {
		return nil, fmt.Errorf("render email: %w", err)
	}

	var text strings.Builder
	text.WriteString(str.greeting + "\n\n")
	text.WriteString(str.summary + "\n\n")
	for _, row := range rows {
		fmt.Fprintf(&text, "%s: %s\n", row.Label, row.Value)
	}
	text.WriteString("\n" + str.note + "\n")
	text.WriteString(str.cta + ": " + calculatorURL + "\n\n")
	text.WriteString(str.disclaimer + "\n")

	return &Message{
		To:      to,
		Subject: str.subject,
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}
