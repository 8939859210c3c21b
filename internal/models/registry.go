package models

// Address endereço estruturado dos cadastros de fornecedor/cliente.
type Address struct {
	State        string `json:"state"`
	City         string `json:"city"`
	Neighborhood string `json:"neighborhood"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Zip          string `json:"zip"`
}

// RegistryEntity cadastro de fornecedor ou cliente. As duas listas são
// estruturalmente idênticas; o papel (fornecedor vs cliente) vem da
// coleção em que o registro vive.
type RegistryEntity struct {
	ID      string  `json:"id"`
	Code    string  `json:"code"` // 3 dígitos
	Name    string  `json:"name"`
	Contact string  `json:"contact"`
	CNPJ    string  `json:"cnpj"`
	IE      string  `json:"ie"`
	Address Address `json:"address"`
	Phone   string  `json:"phone"`
	Email   string  `json:"email"`
}

// ProductEntity cadastro de produto, usado para preencher código e nome
// nas novas entradas.
type ProductEntity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"` // 3 dígitos
}

// ServiceEntity cadastro de serviço (mão de obra). Além do código e nome,
// pode carregar um preço padrão sugerido na cobrança.
type ServiceEntity struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Code         string  `json:"code"` // 3 dígitos
	DefaultPrice float64 `json:"defaultPrice,omitempty"`
}
