package idgen

import (
	"hash/fnv"
	"os"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

// NewWorker builds a sonyflake worker. Hosts without a private IPv4 address fall back to a machine id derived
// from hostname and pid.
func NewWorker() *sonyflake.Sonyflake {
	if w := sonyflake.NewSonyflake(sonyflake.Settings{}); w != nil {
		return w
	}
	logrus.Warn("no private ip found for id generation, fallback to hostname based machine id")
	return sonyflake.NewSonyflake(sonyflake.Settings{MachineID: fallbackMachineID})
}

func fallbackMachineID() (uint16, error) {
	h := fnv.New32a()
	hostname, _ := os.Hostname()
	_, _ = h.Write([]byte(hostname))
	return uint16(h.Sum32()) ^ uint16(os.Getpid()), nil
}

func NextID(idWorker *sonyflake.Sonyflake) types.ID {
	id, err := idWorker.NextID()
	if err != nil {
		panic(err)
	}
	return types.ID(id)
}
