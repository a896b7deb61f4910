package repository

// Factory describes access to different domain repositories.
type Factory interface {
	Admins() AdminRepository
	Clients() ClientRepository
	Orders() OrderRepository
	BloodTests() BloodTestRepository
	TestResults() TestResultRepository
	Addresses() AddressRepository
	AuditLogs() AuditLogRepository
	WebhookEvents() WebhookEventRepository
}
