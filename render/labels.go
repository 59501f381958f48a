package render

import (
	"strings"

	"github.com/cukaiku/tax-engine/engine"
)

// =============================================================================
// BAHASA MALAYSIA LABELS
// =============================================================================

// bmLabels maps engine labels to the wording on the LHDN form.
var bmLabels = map[string]string{
	// Section B
	"Employment income":             "Pendapatan penggajian",
	"Statutory employment income":   "Pendapatan berkanun penggajian punca Malaysia",
	"Rental income (net)":           "Pendapatan berkanun sewa (bersih)",
	"Statutory rental income (net)": "Pendapatan berkanun sewa punca Malaysia",
	"Other income":                  "Pendapatan lain",

	"Interest, discounts, royalties, premiums, pensions, annuities, other": "Pendapatan berkanun faedah, diskaun, royalti, premium, pencen, anuiti, lain-lain",
	"Statutory business income (adjusted)":                                "Pendapatan berkanun perniagaan (dilaraskan)",
	"Dividend income (above RM100k — flat 2% tax, verify with LHDN)":      "Pendapatan dividen (melebihi RM100k — cukai rata 2%)",

	// Section C
	"Aggregate income": "Pendapatan agregat",

	// Section D
	"Individual & dependents":                      "Individu dan saudara tanggungan",
	"Spouse (no income / joint assessment)":        "Suami / isteri (tiada pendapatan / taksiran bersama)",
	"Alimony (formal agreement)":                   "Bayaran alimoni kepada bekas isteri",
	"Disabled individual (self)":                   "Individu yang kurang upaya",
	"Disabled spouse":                              "Suami / isteri yang kurang upaya",
	"Education fees (self)":                        "Yuran pengajian (sendiri)",
	"Parents medical / carer expenses":             "Perbelanjaan perubatan / penjaga ibu bapa",
	"Medical expenses (self / spouse / child)":     "Perbelanjaan perubatan (sendiri / suami / isteri / anak)",
	"Learning disability treatment (child ≤18)":    "Rawatan ketidakupayaan pembelajaran (anak ≤18 tahun)",
	"Disabled equipment":                           "Peralatan sokongan asas untuk orang kurang upaya",
	"Lifestyle (books, PC, internet, sports, gym)": "Gaya hidup (buku, PC, internet, sukan, gimnasium)",
	"Additional sports activity":                   "Gaya hidup — pelepasan tambahan (sukan)",
	"Breastfeeding equipment":                      "Peralatan penyusuan ibu",
	"Childcare / kindergarten":                     "Yuran taska / tadika",
	"SSPN net deposit":                             "Tabungan bersih SSPN",
	"EV charging facility / compost machine":       "Pemasangan peralatan pengecasan EV / mesin kompos",
	"EPF & life insurance / takaful":               "Insurans nyawa dan KWSP",
	"Education & medical insurance":                "Insurans pendidikan dan perubatan",
	"SOCSO / EIS contributions":                    "Caruman PERKESO / SIP",
	"Private Retirement Scheme (PRS)":              "Skim persaraan swasta dan anuiti tertangguh",
	"Housing loan interest (first home)":           "Faedah pinjaman perumahan (rumah pertama)",
	"Total tax reliefs":                            "Jumlah pelepasan",

	// Section E
	"Total income":                               "Jumlah pendapatan",
	"Chargeable income":                          "Pendapatan bercukai",
	"Tax on chargeable income":                   "Jumlah cukai pendapatan",
	"Tax on dividend income (2% flat)":           "Cukai atas pendapatan dividen (2% rata)",
	"TAX PAYABLE":                                "JUMLAH CUKAI YANG DIKENAKAN",
	"Tax payable (30% flat rate — non-resident)": "Cukai kena dibayar (kadar rata 30% — bukan pemastautin)",

	// Section F
	"Zakat / fitrah rebate":                      "Zakat dan fitrah",
	"Self rebate (chargeable income ≤ RM35,000)": "Rebat sendiri",
	"Spouse rebate":                              "Rebat suami / isteri",

	// Section H
	"PCB / monthly tax deductions": "PCB / potongan cukai bulanan",
	"PCB deducted by employer":     "PCB yang ditolak oleh majikan",
	"Balance payable to LHDN":      "Baki cukai kena dibayar",
	"Refund from LHDN":             "Bayaran balik daripada LHDN",
}

// Per-unit labels carry a count suffix, so they match on prefix. Order
// matters: the longer "Disabled children in higher edu" must win.
var bmPrefixes = []struct{ en, bm string }{
	{"Children under 18", "Anak bawah 18 tahun"},
	{"Children higher edu", "Anak pengajian tinggi"},
	{"Children pre-U", "Anak pra-universiti"},
	{"Disabled children in higher edu", "Anak OKU dalam pengajian tinggi"},
	{"Disabled children", "Anak kurang upaya"},
}

const bmDonation = "Derma / hadiah / sumbangan yang diluluskan"

// BMLabel returns the Bahasa Malaysia wording for an engine label. Labels
// with no translation are returned unchanged.
func BMLabel(label string) string {
	if bm, ok := bmLabels[label]; ok {
		return bm
	}
	for _, p := range bmPrefixes {
		if strings.HasPrefix(label, p.en) {
			return p.bm + strings.TrimPrefix(label, p.en)
		}
	}
	if i := strings.Index(label, "Approved donations"); i >= 0 {
		return label[:i] + bmDonation
	}
	return label
}

// SectionTitles are the BM section headers of the form.
var SectionTitles = map[engine.Section]string{
	engine.SectionIncome:      "PENDAPATAN BERKANUN DAN JUMLAH PENDAPATAN",
	engine.SectionAggregate:   "JUMLAH PENDAPATAN",
	engine.SectionReliefs:     "PELEPASAN",
	engine.SectionComputation: "RUMUSAN CUKAI",
	engine.SectionRebates:     "REBAT",
	engine.SectionPayments:    "BAYARAN",
}

// SectionNames are the English section headers used in the terminal.
var SectionNames = map[engine.Section]string{
	engine.SectionIncome:      "Statutory income",
	engine.SectionAggregate:   "Aggregate income",
	engine.SectionReliefs:     "Reliefs",
	engine.SectionComputation: "Tax computation",
	engine.SectionRebates:     "Rebates",
	engine.SectionPayments:    "PCB and balance",
}

// FormSubtitles name each return in full.
var FormSubtitles = map[engine.FormType]string{
	engine.FormBE: "BORANG NYATA INDIVIDU PEMASTAUTIN YANG TIDAK MENJALANKAN PERNIAGAAN",
	engine.FormB:  "BORANG NYATA INDIVIDU PEMASTAUTIN YANG MENJALANKAN PERNIAGAAN",
	engine.FormM:  "BORANG NYATA INDIVIDU BUKAN PEMASTAUTIN",
}
