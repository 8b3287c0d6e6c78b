package driven

import (
	port "github.com/alorle/epg-manager/internal/port/driven"
)

// Compile-time checks that every gateway implements its port.
var (
	_ port.ChannelRepository = (*ChannelMemoryRepository)(nil)
	_ port.ChannelRepository = (*ChannelBoltDBRepository)(nil)
	_ port.ChannelRepository = (*ChannelPostgresRepository)(nil)

	_ port.ProgramRepository = (*ProgramMemoryRepository)(nil)
	_ port.ProgramRepository = (*ProgramBoltDBRepository)(nil)
	_ port.ProgramRepository = (*ProgramPostgresRepository)(nil)

	_ port.ScheduleLocker = (*MemoryLocker)(nil)
	_ port.ScheduleLocker = (*PostgresLocker)(nil)
)
