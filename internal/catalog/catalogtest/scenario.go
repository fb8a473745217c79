package catalogtest

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/discope/discope-backend/pkg/dates"
	"github.com/discope/discope-backend/pkg/db/models"
	"github.com/discope/discope-backend/pkg/enums"
)

// Scenario is a small but complete center configuration: a yearly published
// price list, a draft list for the following year, a school pack, city tax
// autosale and a handful of rooms.
type Scenario struct {
	*Catalog

	Office        *models.CenterOffice
	Center        *models.Center
	CategoryID    uuid.UUID
	Customer      *models.Customer
	OtherCustomer *models.Customer
	GeneralPublic *models.RateClass
	School        *models.RateClass

	Adults    *models.AgeRange
	Secondary *models.AgeRange
	Primary   *models.AgeRange

	Night       *models.Product
	Breakfast   *models.Product
	SchoolNight *models.Product
	SchoolPack  *models.Product
	Citytax     *models.Product
	MeetingRoom *models.Product

	PublishedList *models.PriceList
	DraftList     *models.PriceList
	SchoolPromo   *models.Discount
	Plan          *models.PaymentPlan
	Rooms         []*models.RentalUnit

	models []any
}

func ptr[T any](v T) *T { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// NewScenario builds the reference configuration.
func NewScenario() *Scenario {
	s := &Scenario{Catalog: New(), CategoryID: uuid.New()}

	s.Office = &models.CenterOffice{ID: uuid.New(), Name: "Office Ardennes", RentalUnitAutoAssign: true}
	s.GeneralPublic = &models.RateClass{ID: uuid.New(), Code: "T4", Name: "general public"}
	s.School = &models.RateClass{ID: uuid.New(), Code: "T5", Name: "school"}
	s.Adults = &models.AgeRange{ID: uuid.New(), Name: "adults", AgeFrom: 18, AgeTo: 99, IsActive: true, Position: 1}
	s.Secondary = &models.AgeRange{ID: uuid.New(), Name: "secondary", AgeFrom: 12, AgeTo: 18, IsActive: true, Position: 2}
	s.Primary = &models.AgeRange{ID: uuid.New(), Name: "primary", AgeFrom: 6, AgeTo: 12, IsActive: true, Position: 3}
	s.Center = &models.Center{
		ID:                  uuid.New(),
		Name:                "Villers-Sainte-Gertrude",
		Code:                "VSG",
		OfficeID:            s.Office.ID,
		Office:              s.Office,
		PriceListCategoryID: s.CategoryID,
		AutosaleCategoryID:  ptr(s.CategoryID),
		HasCitytax:          true,
		DefaultAgeRangeID:   ptr(s.Adults.ID),
	}
	s.Customer = &models.Customer{ID: uuid.New(), Name: "Famille Dupont", RateClassID: ptr(s.GeneralPublic.ID)}
	s.OtherCustomer = &models.Customer{ID: uuid.New(), Name: "Athénée Royal", RateClassID: ptr(s.School.ID)}

	room := "room"
	nightModel := &models.ProductModel{ID: uuid.New(), Name: "Nuitée chambre", QtyAccountingMethod: enums.QtyAccountingPerson,
		IsAccomodation: true, IsRepeatable: true, RentalUnitType: &room}
	s.Night = product("GA-NuitCh1-A", "Nuitée chambre 1 pers", nightModel)

	breakfastModel := &models.ProductModel{ID: uuid.New(), Name: "Petit déjeuner", QtyAccountingMethod: enums.QtyAccountingPerson,
		IsMeal: true, MealSlot: ptr(enums.MealSlotMorning), IsRepeatable: true}
	s.Breakfast = product("RS-PDJ-A", "Petit déjeuner", breakfastModel)

	schoolNightModel := &models.ProductModel{ID: uuid.New(), Name: "Nuitée scolaire", QtyAccountingMethod: enums.QtyAccountingPerson,
		IsAccomodation: true, IsRepeatable: true, RentalUnitType: &room}
	s.SchoolNight = product("SC-Nuit-A", "Nuitée scolaire", schoolNightModel)

	packModel := &models.ProductModel{ID: uuid.New(), Name: "Classe verte", QtyAccountingMethod: enums.QtyAccountingPerson,
		IsPack: true, IsLocked: true, HasDuration: true, Duration: 2, Capacity: 10, BookingTypeCode: ptr("SEJ"),
		ScheduleFrom: ptr("09:00"), ScheduleTo: ptr("16:00")}
	s.SchoolPack = product("SC-Pack-CV", "Pack classe verte", packModel)
	s.SchoolPack.AgeRangeID = ptr(s.Secondary.ID)

	citytaxModel := &models.ProductModel{ID: uuid.New(), Name: "Taxe de séjour", QtyAccountingMethod: enums.QtyAccountingPerson,
		IsRepeatable: true, IsCitytax: true}
	s.Citytax = product("KA-CTaxSej-A", "Taxe Séjour", citytaxModel)

	meetingModel := &models.ProductModel{ID: uuid.New(), Name: "Salle de réunion", QtyAccountingMethod: enums.QtyAccountingUnit}
	s.MeetingRoom = product("GA-Salle-A", "Location salle", meetingModel)

	for _, p := range []*models.Product{s.Night, s.Breakfast, s.SchoolNight, s.SchoolPack, s.Citytax, s.MeetingRoom} {
		s.Products[p.ID] = p
	}
	s.PackLines = []*models.PackLine{
		{ID: uuid.New(), ParentProductID: s.SchoolPack.ID, ChildProductID: s.SchoolNight.ID, ChildProduct: s.SchoolNight, Position: 1},
		{ID: uuid.New(), ParentProductID: s.SchoolPack.ID, ChildProductID: s.Breakfast.ID, ChildProduct: s.Breakfast, Position: 2},
	}

	s.PublishedList = &models.PriceList{ID: uuid.New(), Name: "Tarifs 2023", CategoryID: s.CategoryID,
		DateFrom: dates.MustParse("2023-01-01"), DateTo: dates.MustParse("2023-12-31"), Status: enums.PriceListStatusPublished}
	s.DraftList = &models.PriceList{ID: uuid.New(), Name: "Tarifs 2024", CategoryID: s.CategoryID,
		DateFrom: dates.MustParse("2024-01-01"), DateTo: dates.MustParse("2024-12-31"), Status: enums.PriceListStatusPending}
	s.Prices = []*models.Price{
		price(s.PublishedList, s.Night, "48.9151", "0.06"),
		price(s.PublishedList, s.Breakfast, "6.6038", "0.06"),
		price(s.PublishedList, s.SchoolNight, "18.8679", "0.06"),
		price(s.PublishedList, s.Citytax, "2", "0"),
		price(s.PublishedList, s.MeetingRoom, "100", "0.21"),
		price(s.DraftList, s.Night, "50", "0.06"),
	}

	autosaleList := &models.AutosaleList{ID: uuid.New(), Name: "Autosales 2023", CategoryID: s.CategoryID,
		DateFrom: dates.MustParse("2023-01-01"), DateTo: dates.MustParse("2024-12-31"), IsActive: true}
	s.AutosaleLines = []*models.AutosaleLine{
		{ID: uuid.New(), AutosaleListID: autosaleList.ID, AutosaleList: autosaleList, ProductID: s.Citytax.ID,
			Scope: enums.AutosaleScopeGroup, MinNights: 1, AgeFrom: ptr(12)},
	}

	discountList := &models.DiscountList{ID: uuid.New(), Name: "Remises écoles", CategoryID: s.CategoryID,
		RateClassID: ptr(s.School.ID), DateFrom: dates.MustParse("2023-01-01"), DateTo: dates.MustParse("2023-12-31"), IsActive: true}
	s.SchoolPromo = &models.Discount{ID: uuid.New(), DiscountListID: discountList.ID, DiscountList: discountList,
		Name: "Remise séjour scolaire", Type: enums.AdapterTypePercent, Value: dec("0.1"), MinNights: 2}
	s.Discounts = []*models.Discount{s.SchoolPromo}

	s.Rooms = []*models.RentalUnit{
		{ID: uuid.New(), CenterID: s.Center.ID, Name: "Chambre 1", Type: room, Capacity: 1, IsAccomodation: true},
		{ID: uuid.New(), CenterID: s.Center.ID, Name: "Chambre 4A", Type: room, Capacity: 4, IsAccomodation: true},
		{ID: uuid.New(), CenterID: s.Center.ID, Name: "Chambre 4B", Type: room, Capacity: 4, IsAccomodation: true},
		{ID: uuid.New(), CenterID: s.Center.ID, Name: "Dortoir", Type: room, Capacity: 12, IsAccomodation: true},
		{ID: uuid.New(), CenterID: s.Center.ID, Name: "Salle Hêtre", Type: "meeting", Capacity: 30},
	}
	s.RentalUnits = s.Rooms

	planID := uuid.New()
	s.Plan = &models.PaymentPlan{ID: planID, Name: "Acompte 30%", Steps: []*models.PaymentPlanStep{
		{ID: uuid.New(), PaymentPlanID: planID, Position: 1, Name: "Acompte", Percent: dec("30"), DaysAfterConfirm: 7},
		{ID: uuid.New(), PaymentPlanID: planID, Position: 2, Name: "Solde", Percent: dec("70"), DaysBeforeArrival: ptr(30)},
	}}
	s.PaymentPlans = []*models.PaymentPlan{s.Plan}

	s.Centers[s.Center.ID] = s.Center
	s.Customers[s.Customer.ID] = s.Customer
	s.Customers[s.OtherCustomer.ID] = s.OtherCustomer
	s.RateClasses[s.GeneralPublic.ID] = s.GeneralPublic
	s.RateClasses[s.School.ID] = s.School
	s.AgeRanges = []*models.AgeRange{s.Adults, s.Secondary, s.Primary}

	s.models = []any{s.Office, s.Center, s.Customer, s.OtherCustomer, s.GeneralPublic, s.School,
		s.Adults, s.Secondary, s.Primary,
		nightModel, breakfastModel, schoolNightModel, packModel, citytaxModel, meetingModel,
		s.Night, s.Breakfast, s.SchoolNight, s.SchoolPack, s.Citytax, s.MeetingRoom,
		s.PublishedList, s.DraftList, autosaleList, discountList, s.SchoolPromo, s.Plan}
	for _, pl := range s.PackLines {
		s.models = append(s.models, pl)
	}
	for _, p := range s.Prices {
		s.models = append(s.models, p)
	}
	for _, l := range s.AutosaleLines {
		s.models = append(s.models, l)
	}
	for _, r := range s.Rooms {
		s.models = append(s.models, r)
	}
	for _, st := range s.Plan.Steps {
		s.models = append(s.models, st)
	}
	return s
}

// Seed writes the scenario into db.
func (s *Scenario) Seed(db *gorm.DB) error {
	for _, m := range s.models {
		if err := db.Omit(clause.Associations).Create(m).Error; err != nil {
			return err
		}
	}
	return nil
}

func product(sku, name string, model *models.ProductModel) *models.Product {
	return &models.Product{ID: uuid.New(), SKU: sku, Name: name, ProductModelID: model.ID, ProductModel: model, CanSell: true}
}

func price(list *models.PriceList, p *models.Product, amount, vat string) *models.Price {
	return &models.Price{ID: uuid.New(), PriceListID: list.ID, PriceList: list, ProductID: p.ID, Price: dec(amount), VatRate: dec(vat)}
}
