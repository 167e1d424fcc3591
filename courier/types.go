package courier

// Address is one saved pickup address on the courier account. The API
// returns flags as strings ("1"/"0"), not booleans.
type Address struct {
	ContactPerson  string `json:"addr_contact_person"`
	MobileNumber   string `json:"addr_mobile_number"`
	HouseNo        string `json:"addr_house_no"`
	BuildingName   string `json:"addr_building_name"`
	Area           string `json:"addr_area"`
	Landmark       string `json:"addr_landmark"`
	City           string `json:"addr_city"`
	Country        string `json:"addr_country"`
	DefaultAddress string `json:"default_address"`
}

type addressResponse struct {
	Success   string    `json:"success"`
	Addresses []Address `json:"address"`
}

// Configuration is the account's service setup. Success here is a real
// boolean, unlike the address endpoint.
type Configuration struct {
	Success     bool   `json:"success"`
	ServiceType string `json:"service_type"`
	CourierType string `json:"courier_type"`
}

// ShipmentRequest is the create_shipment_webhook body. Every field is
// mandatory on the wire even when empty.
type ShipmentRequest struct {
	ClientKey                      string `json:"client_key"`
	DeliveryType                   string `json:"delivery_type"`
	LoadType                       string `json:"load_type"`
	ConsignmentType                string `json:"consignment_type"`
	Description                    string `json:"description"`
	Weight                         int    `json:"weight"`
	PaymentType                    string `json:"payment_type"`
	CODAmount                      string `json:"cod_amount"`
	NumPieces                      int    `json:"num_pieces"`
	CustomerReferenceNumber        string `json:"customer_reference_number"`
	OriginAddressName              string `json:"origin_address_name"`
	OriginAddressMobNoCountryCode  string `json:"origin_address_mob_no_country_code"`
	OriginAddressMobileNumber      string `json:"origin_address_mobile_number"`
	OriginAddressHouseNo           string `json:"origin_address_house_no"`
	OriginAddressBuildingName      string `json:"origin_address_building_name"`
	OriginAddressArea              string `json:"origin_address_area"`
	OriginAddressLandmark          string `json:"origin_address_landmark"`
	OriginAddressCity              string `json:"origin_address_city"`
	OriginAddressType              string `json:"origin_address_type"`
	OriginAddressCountry           string `json:"origin_address_country"`
	DestinationAddressName         string `json:"destination_address_name"`
	DestinationMobNoCountryCode    string `json:"destination_address_mob_no_country_code"`
	DestinationAddressMobileNumber string `json:"destination_address_mobile_number"`
	DestinationAddressCountry      string `json:"destination_address_country"`
	DestinationAddressHouseNo      string `json:"destination_address_house_no"`
	DestinationAddressBuildingName string `json:"destination_address_building_name"`
	DestinationAddressArea         string `json:"destination_address_area"`
	DestinationAddressLandmark     string `json:"destination_address_landmark"`
	DestinationAddressCity         string `json:"destination_address_city"`
	DestinationAddressType         string `json:"destination_address_type"`
	PickupDate                     string `json:"pickup_date"`
	TimeZone                       string `json:"time_zone"`
	ShipType                       string `json:"Ship_type"`
}

// ShipmentResponse carries the AWB under a key with a space in it; a 2xx
// response without it is still a failed booking.
type ShipmentResponse struct {
	AWBNo   string `json:"AWB No"`
	Message string `json:"message"`
}

// EnrichmentBundle is the result of the two account lookups. Address nil
// means booking must not proceed; Config nil falls back to defaults.
type EnrichmentBundle struct {
	Address *Address
	Config  *Configuration
}
