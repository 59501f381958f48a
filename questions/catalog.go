package questions

// Section keys. They double as label keys for translated section titles.
const (
	SectionFormType    = "secFormType"
	SectionIncome      = "secIncome"
	SectionBusiness    = "secBusiness"
	SectionOtherIncome = "secOtherIncome"
	SectionPersonal    = "secPersonal"
	SectionChildren    = "secChildren"
	SectionParents     = "secParents"
	SectionEduLife     = "secEduLifestyle"
	SectionMedical     = "secMedical"
	SectionInsurance   = "secInsurance"
	SectionHousing     = "secHousing"
	SectionDeductions  = "secDeductions"
	SectionPCB         = "secPcb"
	SectionRebates     = "secRebates"
	SectionEmail       = "secEmail"
)

// Form M has no personal reliefs; income questions still apply.
var notM = NotEquals("formType", "M")

func when(conds ...Condition) []Condition { return conds }

func yesOn(field string) []Condition { return when(Equals(field, "yes")) }

func hasChildren() []Condition { return when(notM, Equals("hasChildren", "yes")) }

// Catalog is the questionnaire in display order. A question's visibility
// only ever depends on questions listed before it.
var Catalog = []Question{
	// Form type
	{
		ID: "formType", Section: SectionFormType, Kind: KindSelect,
		Text: "Which LHDN tax form applies to you?",
		Tip:  "Form BE: resident with employment/rental income only. Form B: resident with business income (sole proprietor, partnership, freelancer with registered business). Form M: non-resident individual.",
		Options: []Option{
			{Value: "BE", Label: "Form BE — Resident, no business income (most common)"},
			{Value: "B", Label: "Form B — Resident with business income"},
			{Value: "M", Label: "Form M — Non-resident individual"},
		},
	},

	// Income
	{
		ID: "employmentIncome", Section: SectionIncome, Kind: KindCurrency, FormRef: "C1",
		Text: "What is your total statutory employment income?",
		Tip:  "From your EA form (Section B). Includes salary, bonuses, commissions, allowances, gratuity, director fees. Maps to Form BE field C1.",
	},
	{
		ID: "businessGrossIncome", Section: SectionBusiness, Kind: KindCurrency, FormRef: "C6",
		ShowIf: when(Equals("formType", "B")),
		Text:   "What is your gross business income? (sales, fees, commissions before expenses)",
		Tip:    "Include all revenue from your sole proprietorship, partnership share, or registered freelance business. This is before any business deductions.",
	},
	{
		ID: "businessAdjustedIncome", Section: SectionBusiness, Kind: KindCurrency, FormRef: "C6",
		ShowIf: when(Equals("formType", "B")),
		Text:   "What is your adjusted business income (after deducting allowable business expenses)?",
		Tip:    "From your business accounts: gross income minus allowable expenses. This is your statutory business income.",
	},
	{
		ID: "hasRentalIncome", Section: SectionOtherIncome, Kind: KindYesNo,
		Text: "Do you receive rental income from property?",
		Tip:  "Rental income from houses, apartments, commercial property. You can deduct expenses like assessment, quit rent, repairs, interest on loan.",
	},
	{
		ID: "rentalGross", Section: SectionOtherIncome, Kind: KindCurrency, FormRef: "C2",
		ShowIf: yesOn("hasRentalIncome"),
		Text:   "What is your gross annual rental income?",
		Tip:    "Total rent received from all properties before any deductions.",
	},
	{
		ID: "rentalExpenses", Section: SectionOtherIncome, Kind: KindCurrency,
		ShowIf: yesOn("hasRentalIncome"),
		Text:   "What are your allowable rental expenses? (Assessment, quit rent, repairs, loan interest, agent fees)",
		Tip:    "Deductible: assessment tax, quit rent, fire insurance, repairs & maintenance, loan interest, agent commission. Not deductible: capital improvements, personal expenses.",
	},
	{
		ID: "hasInterestIncome", Section: SectionOtherIncome, Kind: KindYesNo,
		Text: "Do you receive taxable interest or discount income?",
		Tip:  "Interest from bonds, debentures, treasury bills. Interest from Malaysian banks (savings/FD) is generally tax exempt.",
	},
	{
		ID: "interestIncome", Section: SectionOtherIncome, Kind: KindCurrency, FormRef: "C3",
		ShowIf: yesOn("hasInterestIncome"),
		Text:   "How much taxable interest / discount income?",
		Tip:    "Do NOT include bank savings/FD interest (tax exempt). Include: bonds, foreign interest, corporate debentures.",
	},
	{
		ID: "hasDividendIncome", Section: SectionOtherIncome, Kind: KindYesNo,
		Text: "Do you receive dividend income exceeding RM100,000 from Malaysian resident companies?",
		Tip:  "Most dividends from Malaysian companies are single-tier (tax exempt). Only dividends exceeding RM100,000 per year from resident companies are taxed at a flat 2% from YA 2025.",
	},
	{
		ID: "dividendIncome", Section: SectionOtherIncome, Kind: KindCurrency, FormRef: "C3a",
		ShowIf: yesOn("hasDividendIncome"),
		Text:   "Enter the portion of dividend income ABOVE RM100,000.",
		Tip:    "Only enter the amount exceeding RM100,000. The first RM100,000 is tax-exempt. This is taxed at a flat 2% (not the progressive brackets).",
	},
	{
		ID: "hasRoyaltyIncome", Section: SectionOtherIncome, Kind: KindYesNo,
		Text: "Do you receive royalty income? (copyright, patents, literary works)",
		Tip:  "Royalties from books, artistic works, music, patents. Literary/artistic royalties: first RM20,000 exempt.",
	},
	{
		ID: "royaltyIncome", Section: SectionOtherIncome, Kind: KindCurrency, FormRef: "C3",
		ShowIf: yesOn("hasRoyaltyIncome"),
		Text:   "Net taxable royalty income (after exemptions)?",
		Tip:    "Literary/artistic royalties: first RM20,000 exempt. Music compositions: first RM20,000 exempt.",
	},
	{
		ID: "hasPensionIncome", Section: SectionOtherIncome, Kind: KindYesNo,
		Text: "Do you receive pension income?",
		Tip:  "Pension is tax exempt if you retired at 55 or above (or compulsory retirement age). Only taxable if you retired before 55.",
	},
	{
		ID: "pensionIncome", Section: SectionOtherIncome, Kind: KindCurrency, FormRef: "C3",
		ShowIf: yesOn("hasPensionIncome"),
		Text:   "How much taxable pension income? (only if retired before 55)",
		Tip:    "If you retired at/after 55: RM0 (exempt). If before 55: pension is taxable until you reach 55.",
	},
	{
		ID: "hasOtherIncome", Section: SectionOtherIncome, Kind: KindYesNo,
		Text: "Any other income? (freelance, part-time, occasional jobs not in EA form)",
		Tip:  "Includes freelance income, lecturing fees, writing fees, broadcasting income. Anything not captured in your EA form.",
	},
	{
		ID: "otherIncome", Section: SectionOtherIncome, Kind: KindCurrency, FormRef: "C3",
		ShowIf: yesOn("hasOtherIncome"),
		Text:   "Total other income?",
	},

	// Personal
	{
		ID: "maritalStatus", Section: SectionPersonal, Kind: KindSelect,
		ShowIf: when(notM),
		Text:   "What is your marital status?",
		Options: []Option{
			{Value: "single", Label: "Single"},
			{Value: "married", Label: "Married"},
			{Value: "divorced", Label: "Divorced (paying alimony)"},
		},
	},
	{
		ID: "spouseWorking", Section: SectionPersonal, Kind: KindSelect,
		ShowIf: when(notM, Equals("maritalStatus", "married")),
		Text:   "Does your spouse have their own income?",
		Tip:    "If no income or joint assessment: claim RM4,000 spouse relief.",
		Options: []Option{
			{Value: "no", Label: "No income / Joint assessment"},
			{Value: "yes", Label: "Yes, separate assessment"},
		},
	},
	{
		ID: "isDisabled", Section: SectionPersonal, Kind: KindYesNo,
		ShowIf: when(notM),
		Text:   "Are you registered as a disabled person (OKU) with JKM?",
		Tip:    "Additional RM7,000 on top of standard RM9,000 individual relief.",
	},
	{
		ID: "spouseDisabled", Section: SectionPersonal, Kind: KindYesNo,
		ShowIf: when(notM, Equals("maritalStatus", "married")),
		Text:   "Is your spouse registered as disabled (OKU)?",
		Tip:    "Additional RM6,000 relief.",
	},

	// Children
	{
		ID: "hasChildren", Section: SectionChildren, Kind: KindYesNo,
		ShowIf: when(notM),
		Text:   "Do you have children?",
	},
	{
		ID: "childrenUnder18", Section: SectionChildren, Kind: KindNumber, FormRef: "D9",
		ShowIf: hasChildren(),
		Text:   "How many unmarried children under 18?",
		Tip:    "RM2,000 per child.",
	},
	{
		ID: "childrenHigherEdu", Section: SectionChildren, Kind: KindNumber, FormRef: "D10",
		ShowIf: hasChildren(),
		Text:   "How many children (18+) in full-time higher education (diploma/degree/masters)?",
		Tip:    "RM8,000 per child at diploma level or above.",
	},
	{
		ID: "childrenPreU", Section: SectionChildren, Kind: KindNumber, FormRef: "D10",
		ShowIf: hasChildren(),
		Text:   "How many children (18+) in pre-U / A-Levels / matriculation?",
		Tip:    "RM2,000 per child in pre-university.",
	},
	{
		ID: "disabledChildren", Section: SectionChildren, Kind: KindNumber, FormRef: "D11",
		ShowIf: hasChildren(),
		Text:   "How many disabled children (registered OKU)?",
		Tip:    "RM8,000 per disabled child. Additional RM8,000 if in higher edu.",
	},
	{
		ID: "disabledChildInEdu", Section: SectionChildren, Kind: KindNumber, FormRef: "D12",
		ShowIf: when(Positive("disabledChildren")),
		Text:   "Of disabled children, how many are in higher education (18+)?",
	},
	{
		ID: "hasBreastfeedingChild", Section: SectionChildren, Kind: KindYesNo,
		ShowIf: hasChildren(),
		Text:   "Purchased breastfeeding equipment for a child aged 2 or below?",
		Tip:    "Up to RM1,000. Claimable once every 2 years.",
	},
	{
		ID: "breastfeedingAmount", Section: SectionChildren, Kind: KindCurrency, Max: 1000, FormRef: "D13",
		ShowIf: yesOn("hasBreastfeedingChild"),
		Text:   "Amount spent on breastfeeding equipment?",
	},
	{
		ID: "childcareFees", Section: SectionChildren, Kind: KindYesNo,
		ShowIf: hasChildren(),
		Text:   "Paid childcare / kindergarten fees for children aged 6 or below?",
		Tip:    "Up to RM3,000 for registered centres.",
	},
	{
		ID: "childcareAmount", Section: SectionChildren, Kind: KindCurrency, Max: 3000, FormRef: "D14",
		ShowIf: yesOn("childcareFees"),
		Text:   "Total childcare / kindergarten fees?",
	},
	{
		ID: "sspnDeposit", Section: SectionChildren, Kind: KindYesNo,
		ShowIf: hasChildren(),
		Text:   "Made net deposits into SSPN (education savings) this year?",
		Tip:    "Net deposit = total deposits minus total withdrawals in the year. Up to RM8,000.",
	},
	{
		ID: "sspnAmount", Section: SectionChildren, Kind: KindCurrency, Max: 8000, FormRef: "D15",
		ShowIf: yesOn("sspnDeposit"),
		Text:   "SSPN net deposit amount?",
	},
	{
		ID: "learningDisability", Section: SectionChildren, Kind: KindYesNo,
		ShowIf: hasChildren(),
		Text:   "Spent on learning disability assessment / intervention for a child aged 18 or below?",
		Tip:    "Up to RM6,000 for diagnosis, early intervention, rehabilitation.",
	},
	{
		ID: "learningDisabilityAmount", Section: SectionChildren, Kind: KindCurrency, Max: 6000, FormRef: "D5a",
		ShowIf: yesOn("learningDisability"),
		Text:   "Amount spent on learning disability treatment?",
	},

	// Parents
	{
		ID: "parentsMedical", Section: SectionParents, Kind: KindYesNo,
		ShowIf: when(notM),
		Text:   "Paid medical / carer / dental expenses for parents or grandparents?",
		Tip:    "Parents must reside in Malaysia. Includes dental, nursing home, medical treatment. Up to RM8,000.",
	},
	{
		ID: "parentsMedicalAmount", Section: SectionParents, Kind: KindCurrency, Max: 8000, FormRef: "D4",
		ShowIf: yesOn("parentsMedical"),
		Text:   "Amount spent on parents' medical/carer expenses?",
	},

	// Education and lifestyle
	{
		ID: "selfEducation", Section: SectionEduLife, Kind: KindYesNo,
		ShowIf: when(notM),
		Text:   "Paid for education / professional courses for yourself?",
		Tip:    "Masters/PhD: any course. Others: law, accounting, technical, vocational, upskilling (RM2,000 sub-limit). Up to RM7,000 total.",
	},
	{
		ID: "educationAmount", Section: SectionEduLife, Kind: KindCurrency, Max: 7000, FormRef: "D3",
		ShowIf: yesOn("selfEducation"),
		Text:   "Education fees amount?",
	},
	{
		ID: "lifestyleSpending", Section: SectionEduLife, Kind: KindCurrency, Max: 2500, FormRef: "D7",
		ShowIf: when(notM),
		Text:   "Total lifestyle spending? (Books, PC, phone, internet, sports equipment, gym)",
		Tip:    "Books, laptops, phones, tablets, internet bills, sports equipment, gym memberships. Up to RM2,500.",
	},
	{
		ID: "additionalSports", Section: SectionEduLife, Kind: KindYesNo,
		ShowIf: when(notM),
		Text:   "Additional sports spending beyond the lifestyle limit?",
		Tip:    "Extra RM1,000 for sports equipment, facility rental, competition fees, gym.",
	},
	{
		ID: "additionalSportsAmount", Section: SectionEduLife, Kind: KindCurrency, Max: 1000, FormRef: "D8",
		ShowIf: yesOn("additionalSports"),
		Text:   "Additional sports amount?",
	},
	{
		ID: "hasEV", Section: SectionEduLife, Kind: KindYesNo,
		ShowIf: when(notM),
		Text:   "Installed EV charging equipment at home, or purchased a domestic compost machine?",
		Tip:    "Up to RM2,500 for EV charging facilities or domestic compost machines.",
	},
	{
		ID: "evAmount", Section: SectionEduLife, Kind: KindCurrency, Max: 2500, FormRef: "D16",
		ShowIf: yesOn("hasEV"),
		Text:   "EV charging / compost machine amount?",
	},

	// Medical
	{
		ID: "medicalSelf", Section: SectionMedical, Kind: KindYesNo,
		ShowIf: when(notM),
		Text:   "Medical expenses for serious diseases, fertility treatment, vaccines, dental, or mental health?",
		Tip:    "Overall cap RM10,000. Sub-limits: vaccines RM1,000, dental RM1,000, health screening/mental health RM1,000.",
	},
	{
		ID: "medicalSelfAmount", Section: SectionMedical, Kind: KindCurrency, Max: 10000, FormRef: "D5",
		ShowIf: yesOn("medicalSelf"),
		Text:   "Total medical expenses (self, spouse, or child)?",
	},
	{
		ID: "disabledEquipment", Section: SectionMedical, Kind: KindYesNo,
		ShowIf: when(notM),
		Text:   "Purchased equipment for a disabled person (self, spouse, child, or parent)?",
		Tip:    "Wheelchairs, hearing aids, dialysis machines, crutches. Up to RM6,000. Spectacles are NOT included.",
	},
	{
		ID: "disabledEquipmentAmount", Section: SectionMedical, Kind: KindCurrency, Max: 6000, FormRef: "D6",
		ShowIf: yesOn("disabledEquipment"),
		Text:   "Disabled equipment amount?",
	},

	// Insurance and retirement
	{
		ID: "epfAmount", Section: SectionInsurance, Kind: KindCurrency, Max: 4000, FormRef: "D17a",
		ShowIf: when(notM),
		Text:   "EPF contributions this year?",
		Tip:    "Check your EPF statement. Private sector: EPF cap is RM4,000 for relief purposes.",
	},
	{
		ID: "lifeInsurance", Section: SectionInsurance, Kind: KindCurrency, Max: 3000, FormRef: "D17b",
		ShowIf: when(notM),
		Text:   "Life insurance / takaful premiums paid this year?",
		Tip:    "EPF + life insurance combined cap is RM7,000. Life insurance alone capped at RM3,000.",
	},
	{
		ID: "eduMedInsurance", Section: SectionInsurance, Kind: KindCurrency, Max: 4000, FormRef: "D18",
		ShowIf: when(notM),
		Text:   "Education or medical insurance premiums?",
		Tip:    "For self, spouse, or child. Up to RM4,000.",
	},
	{
		ID: "socso", Section: SectionInsurance, Kind: KindCurrency, Max: 350, FormRef: "D19",
		ShowIf: when(notM),
		Text:   "SOCSO / EIS contribution this year?",
		Tip:    "Check your payslip. Cap is RM350.",
	},
	{
		ID: "prsContribution", Section: SectionInsurance, Kind: KindYesNo,
		ShowIf: when(notM),
		Text:   "Contributed to a Private Retirement Scheme (PRS)?",
		Tip:    "Up to RM3,000. Separate from EPF.",
	},
	{
		ID: "prsAmount", Section: SectionInsurance, Kind: KindCurrency, Max: 3000, FormRef: "D20",
		ShowIf: yesOn("prsContribution"),
		Text:   "PRS contribution amount?",
	},

	// Housing
	{
		ID: "firstHomeLoan", Section: SectionHousing, Kind: KindYesNo,
		ShowIf: when(notM),
		Text:   "Are you paying a housing loan for your FIRST residential property, with SPA signed between 2025–2027?",
		Tip:    "New from YA 2025. Claim interest paid on your first home loan. Must be a residential property.",
	},
	{
		ID: "housePrice", Section: SectionHousing, Kind: KindSelect,
		ShowIf: yesOn("firstHomeLoan"),
		Text:   "What is the purchase price range of the property?",
		Options: []Option{
			{Value: "under500k", Label: "≤ RM500,000 (up to RM7,000 relief)"},
			{Value: "500k750k", Label: "RM500,001 – RM750,000 (up to RM5,000)"},
			{Value: "above750k", Label: "Above RM750,000 (not eligible)"},
		},
	},
	{
		ID: "housingInterest", Section: SectionHousing, Kind: KindCurrency, Max: 7000, FormRef: "D21",
		ShowIf: when(Equals("firstHomeLoan", "yes"), NotEquals("housePrice", "above750k")),
		Text:   "Housing loan interest paid this year?",
	},

	// Deductions
	{
		ID: "hasDonations", Section: SectionDeductions, Kind: KindYesNo,
		ShowIf: when(notM),
		Text:   "Made donations to approved charities, sports bodies, or government funds?",
		Tip:    "Up to 10% of aggregate income. Includes LHDN-approved institutions, sports activities, national interest projects, wakaf. Keep receipts.",
	},
	{
		ID: "donationAmount", Section: SectionDeductions, Kind: KindCurrency, FormRef: "C7",
		ShowIf: yesOn("hasDonations"),
		Text:   "Total approved donations?",
		Tip:    "Only donations to LHDN-approved institutions qualify. Keep official receipts.",
	},

	// PCB
	{
		ID: "pcbAmount", Section: SectionPCB, Kind: KindCurrency, FormRef: "H4",
		ShowIf: when(notM),
		Text:   "Total PCB (Potongan Cukai Bulanan) deducted by your employer this year?",
		Tip:    "Check your EA form (Section C) or total up your monthly payslips. If PCB exceeds tax payable, you get a refund.",
	},

	// Rebates
	{
		ID: "zakatAmount", Section: SectionRebates, Kind: KindCurrency, FormRef: "F1",
		ShowIf: when(notM),
		Text:   "Paid zakat or fitrah this year? If so, how much?",
		Tip:    "Zakat is a direct tax rebate. It reduces your tax payable ringgit-for-ringgit, not just your chargeable income.",
	},

	{
		ID: "email", Section: SectionEmail, Kind: KindEmail,
		Text: "Want a reminder in November to maximize your year-end reliefs?",
		Tip:  "We'll remind you to top up PRS, SSPN, insurance, and lifestyle before December 31st. No spam.",
	},
}
