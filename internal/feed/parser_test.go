package feed

import (
	"strings"
	"testing"
	"time"
)

const sampleFeed = `dealer_id,vin,stock_number,new_used,year,make,model,odometer,color,msrp,price,photo_url_list,description
4889,1HD1KTP16PB612345,HD612345,U,2023,Harley-Davidson,Street Glide,"12,450",Vivid Black,"$27,990","$24,999","https://img.example/1.jpg,https://img.example/2.jpg",Clean dealer trade
4889,1HD1YHK19NB054321,HD054321,N,2024,Harley-Davidson,Low Rider ST,#N/A,Billiard Gray,,"$22,499",https://img.example/3.jpg,One-of-a-kind custom paint
4889,,MISSINGPRICE,U,2022,Harley-Davidson,Fat Bob,8000,,,,https://img.example/4.jpg,
`

func TestParse(t *testing.T) {
	var p Parser
	listings, err := p.Parse(strings.NewReader(sampleFeed))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	// Row without a price is skipped, not fatal
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}

	used := listings[0]
	if used.Condition != "Used" {
		t.Errorf("expected condition Used from U, got %q", used.Condition)
	}
	if used.Odometer == nil || *used.Odometer != 12450 {
		t.Errorf("odometer not parsed from quoted thousands: %v", used.Odometer)
	}
	if used.MSRP == nil || *used.MSRP != 27990 {
		t.Errorf("MSRP not parsed from currency format: %v", used.MSRP)
	}
	if used.Price != 24999 {
		t.Errorf("price = %v", used.Price)
	}
	if len(used.PhotoURLs) != 2 {
		t.Errorf("expected 2 photo URLs, got %v", used.PhotoURLs)
	}

	fresh := listings[1]
	if fresh.Condition != "New" {
		t.Errorf("expected condition New from N, got %q", fresh.Condition)
	}
	if fresh.Odometer != nil {
		t.Errorf("#N/A odometer should be nil, got %v", *fresh.Odometer)
	}
	if fresh.MSRP != nil {
		t.Errorf("empty MSRP should be nil")
	}
	if !fresh.IsCustom() {
		t.Error("description should mark listing as custom")
	}
}

func TestParseStrict(t *testing.T) {
	p := Parser{Strict: true}
	_, err := p.Parse(strings.NewReader(sampleFeed))
	if err == nil {
		t.Fatal("strict parse should fail on the priceless row")
	}
	if !strings.Contains(err.Error(), "price") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseHeaderAliases(t *testing.T) {
	feed := "Stock #,Year,Make,Model,Selling Price,Photos\nHD1,2024,Harley-Davidson,Breakout,21999,https://img.example/a.jpg\n"

	var p Parser
	listings, err := p.Parse(strings.NewReader(feed))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}
	if listings[0].StockNumber != "HD1" {
		t.Errorf("stock number alias not resolved: %q", listings[0].StockNumber)
	}
	if listings[0].Price != 21999 {
		t.Errorf("price alias not resolved: %v", listings[0].Price)
	}
}

func TestParseBOMHeader(t *testing.T) {
	feed := "\ufeffstock_number,year,make,model,price,photo_url_list\nHD1,2024,Harley-Davidson,Breakout,21999,https://img.example/a.jpg\n"

	var p Parser
	listings, err := p.Parse(strings.NewReader(feed))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(listings) != 1 || listings[0].StockNumber != "HD1" {
		t.Errorf("BOM-prefixed header not resolved: %v", listings)
	}
}

func TestParseDrivetrainDesc(t *testing.T) {
	feed := "stock_number,year,make,model,price,photo_url_list,Drivetrain Desc\nHD1,2024,Harley-Davidson,Breakout,21999,https://img.example/a.jpg,Belt\n"

	var p Parser
	listings, err := p.Parse(strings.NewReader(feed))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if listings[0].Drivetrain == nil || *listings[0].Drivetrain != "Belt" {
		t.Errorf("Drivetrain Desc column not resolved: %v", listings[0].Drivetrain)
	}
}

func TestParseDateFallsBackToNow(t *testing.T) {
	feed := "stock_number,year,make,model,price,photo_url_list,inventory_date\nHD1,2024,Harley-Davidson,Breakout,21999,https://img.example/a.jpg,\n"

	var p Parser
	listings, err := p.Parse(strings.NewReader(feed))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if listings[0].InventoryDate.IsZero() {
		t.Error("missing inventory date should fall back to now, got zero time")
	}
	if time.Since(listings[0].InventoryDate) > time.Minute {
		t.Errorf("inventory date fallback not recent: %v", listings[0].InventoryDate)
	}
}

func TestFilter(t *testing.T) {
	var p Parser
	listings, err := p.Parse(strings.NewReader(sampleFeed))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	used := Filter{Condition: "used"}.Apply(listings)
	if len(used) != 1 || used[0].StockNumber != "HD612345" {
		t.Errorf("condition filter: %v", used)
	}

	cheap := Filter{MaxPrice: 23000}.Apply(listings)
	if len(cheap) != 1 || cheap[0].StockNumber != "HD054321" {
		t.Errorf("max price filter: %v", cheap)
	}

	newer := Filter{MinYear: 2024}.Apply(listings)
	if len(newer) != 1 || newer[0].StockNumber != "HD054321" {
		t.Errorf("min year filter: %v", newer)
	}

	otherDealer := Filter{DealerID: "9999"}.Apply(listings)
	if len(otherDealer) != 0 {
		t.Errorf("dealer filter: %v", otherDealer)
	}

	byStock := Filter{StockNumbers: []string{"hd054321"}, Condition: "Used"}.Apply(listings)
	if len(byStock) != 1 || byStock[0].StockNumber != "HD054321" {
		t.Errorf("stock filter should override other constraints: %v", byStock)
	}

	limited := Filter{Limit: 1}.Apply(listings)
	if len(limited) != 1 {
		t.Errorf("limit filter: %v", limited)
	}
}
