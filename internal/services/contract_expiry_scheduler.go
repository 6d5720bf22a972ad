package services

import (
	"fmt"
	"time"

	"bhms/pkg/logger"

	"github.com/robfig/cron/v3"
)

// ContractExpiryScheduler 合同到期调度器。
// 每天零点扫描一次，把 end_date 已过的生效合同置为 Expired
type ContractExpiryScheduler struct {
	contractService *ContractService
	cron            *cron.Cron
	running         bool
}

// NewContractExpiryScheduler 创建合同到期调度器
func NewContractExpiryScheduler(contractService *ContractService) *ContractExpiryScheduler {
	return &ContractExpiryScheduler{
		contractService: contractService,
		cron:            cron.New(),
	}
}

// Start 启动调度器，启动时先执行一次补扫
func (s *ContractExpiryScheduler) Start() error {
	if s.running {
		return fmt.Errorf("调度器已经在运行")
	}

	logger.GetLogger().Info("启动合同到期调度器")

	if _, err := s.cron.AddFunc("@daily", s.runSweep); err != nil {
		return fmt.Errorf("添加定时任务失败: %v", err)
	}

	s.cron.Start()
	s.running = true

	// 服务可能停机跨天，启动时补扫一次
	go s.runSweep()

	return nil
}

// Stop 停止调度器
func (s *ContractExpiryScheduler) Stop() {
	if !s.running {
		return
	}

	logger.GetLogger().Info("停止合同到期调度器")
	s.cron.Stop()
	s.running = false
}

func (s *ContractExpiryScheduler) runSweep() {
	expired, err := s.contractService.ExpireOverdue(time.Now())
	if err != nil {
		logger.GetLogger().Errorf("合同到期扫描失败: %v", err)
		return
	}
	if expired > 0 {
		logger.GetLogger().Infof("合同到期扫描完成，%d 份合同已标记为到期", expired)
	}
}
