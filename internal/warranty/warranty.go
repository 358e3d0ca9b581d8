// Package warranty implements the claim intake endpoint: multipart parsing,
// report composition and notification dispatch.
package warranty

// Scalar field names of a submission.
const (
	FieldFecha      = "fecha"
	FieldCliente    = "cliente"
	FieldAgente     = "agente"
	FieldContacto   = "contacto"
	FieldModelo     = "modelo"
	FieldReferencia = "referencia"
	FieldTalla      = "talla"
	FieldTelefono   = "telefono"
	FieldFactura    = "factura"
	FieldMotivo     = "motivoReclamacion"
	FieldEmail      = "email"
)

// Photo slot names, in report grid order.
const (
	SlotParDelantero = "fotoParDelantero"
	SlotParTrasero   = "fotoParTrasero"
	SlotDetalle      = "fotoDetalle"
	SlotEtiqueta     = "fotoEtiqueta"
)

// Fields lists every persisted scalar field in form order.
var Fields = []string{
	FieldFecha,
	FieldCliente,
	FieldAgente,
	FieldContacto,
	FieldModelo,
	FieldReferencia,
	FieldTalla,
	FieldTelefono,
	FieldFactura,
	FieldMotivo,
	FieldEmail,
}

// Slots lists the accepted photo slots in grid order.
var Slots = []string{
	SlotParDelantero,
	SlotParTrasero,
	SlotDetalle,
	SlotEtiqueta,
}

const (
	SuccessMessage = "Garantía enviada con éxito"
	failurePrefix  = "Error en el servidor: "
)

// Result is the response envelope returned for every submission.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Succeeded returns the success envelope.
func Succeeded() Result {
	return Result{Success: true, Message: SuccessMessage}
}

// Failed returns the failure envelope for err.
func Failed(err error) Result {
	return Result{Success: false, Message: failurePrefix + err.Error()}
}
