package http

// VerifySignature exposes the signature check for tests.
var VerifySignature = verifyWhatsAppSignature
