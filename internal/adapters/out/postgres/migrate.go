package postgres

import (
	"campusdash/internal/adapters/out/postgres/dasherrepo"
	"campusdash/internal/adapters/out/postgres/deliveryrequestrepo"
	"campusdash/internal/adapters/out/postgres/hallrepo"
	"campusdash/internal/adapters/out/postgres/orderrepo"
	"campusdash/internal/adapters/out/postgres/pairgrouprepo"
	"campusdash/internal/adapters/out/postgres/paymentrepo"
	"campusdash/internal/adapters/out/postgres/queuesnapshotrepo"
	"campusdash/internal/adapters/out/postgres/runrepo"

	"gorm.io/gorm"
)

// Tables lists every table created by Migrate, in truncation-safe order.
var Tables = []string{
	"payment_records",
	"runs",
	"delivery_requests",
	"orders",
	"pair_groups",
	"dasher_availability",
	"hall_menu_prices",
	"hall_fee_overrides",
	"queue_snapshots",
}

// Migrate creates or alters the schema of every document kind.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&pairgrouprepo.PairGroupDTO{},
		&runrepo.RunDTO{},
		&deliveryrequestrepo.DeliveryRequestDTO{},
		&paymentrepo.PaymentDTO{},
		&dasherrepo.AvailabilityDTO{},
		&hallrepo.MenuPriceDTO{},
		&hallrepo.FeeOverrideDTO{},
		&queuesnapshotrepo.QueueSnapshotDTO{},
	)
}
