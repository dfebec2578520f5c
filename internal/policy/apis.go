package policy

// gameOSAPIs lists the functions the Game OS exports to titles. Symbols
// imported from OS modules on a console target must appear here or in
// additionalGameOSAPIs.
var gameOSAPIs = newTable("GameOSAPIs",
	"accept",
	"AcquireSRWLockExclusive",
	"AcquireSRWLockShared",
	"AddVectoredExceptionHandler",
	"AreFileApisANSI",
	"BCryptCloseAlgorithmProvider",
	"BCryptCreateHash",
	"BCryptDecrypt",
	"BCryptDestroyHash",
	"BCryptDestroyKey",
	"BCryptEncrypt",
	"BCryptFinishHash",
	"BCryptGenerateSymmetricKey",
	"BCryptGenRandom",
	"BCryptGetProperty",
	"BCryptHashData",
	"BCryptOpenAlgorithmProvider",
	"BCryptSetProperty",
	"bind",
	"CancelIo",
	"CancelIoEx",
	"CancelSynchronousIo",
	"CancelWaitableTimer",
	"CloseHandle",
	"closesocket",
	"CloseThreadpoolTimer",
	"CloseThreadpoolWait",
	"CloseThreadpoolWork",
	"CoCreateFreeThreadedMarshaler",
	"CoCreateGuid",
	"CoCreateInstance",
	"CoCreateInstanceEx",
	"CoGetApartmentType",
	"CoInitializeEx",
	"CompareFileTime",
	"CompareStringEx",
	"CompareStringOrdinal",
	"CompareStringW",
	"connect",
	"ConvertFiberToThread",
	"ConvertThreadToFiber",
	"ConvertThreadToFiberEx",
	"CopyFile2",
	"CoTaskMemAlloc",
	"CoTaskMemFree",
	"CoTaskMemRealloc",
	"CoUninitialize",
	"CreateDirectoryA",
	"CreateDirectoryW",
	"CreateEventA",
	"CreateEventExA",
	"CreateEventExW",
	"CreateEventW",
	"CreateFiber",
	"CreateFiberEx",
	"CreateFile2",
	"CreateFileA",
	"CreateFileMappingW",
	"CreateFileW",
	"CreateIoCompletionPort",
	"CreateMutexA",
	"CreateMutexExW",
	"CreateMutexW",
	"CreateSemaphoreExW",
	"CreateSemaphoreW",
	"CreateThread",
	"CreateThreadpoolTimer",
	"CreateThreadpoolWait",
	"CreateThreadpoolWork",
	"CreateWaitableTimerExW",
	"DecodePointer",
	"DeleteCriticalSection",
	"DeleteFiber",
	"DeleteFileA",
	"DeleteFileW",
	"DeviceIoControl",
	"DuplicateHandle",
	"EncodePointer",
	"EnterCriticalSection",
	"EnumSystemLocalesW",
	"ExitProcess",
	"ExitThread",
	"FileTimeToSystemTime",
	"FindClose",
	"FindFirstFileExA",
	"FindFirstFileExW",
	"FindFirstFileW",
	"FindNextFileA",
	"FindNextFileW",
	"FlsAlloc",
	"FlsFree",
	"FlsGetValue",
	"FlsSetValue",
	"FlushFileBuffers",
	"FlushProcessWriteBuffers",
	"FormatMessageA",
	"FormatMessageW",
	"freeaddrinfo",
	"FreeEnvironmentStringsW",
	"FreeLibrary",
	"GetACP",
	"getaddrinfo",
	"GetCommandLineA",
	"GetCommandLineW",
	"GetConsoleMode",
	"GetConsoleOutputCP",
	"GetCPInfo",
	"GetCurrentDirectoryW",
	"GetCurrentProcess",
	"GetCurrentProcessId",
	"GetCurrentProcessorNumber",
	"GetCurrentThread",
	"GetCurrentThreadId",
	"GetDateFormatEx",
	"GetDateFormatW",
	"GetDiskFreeSpaceExW",
	"GetDriveTypeW",
	"GetEnvironmentStringsW",
	"GetEnvironmentVariableA",
	"GetEnvironmentVariableW",
	"GetExitCodeProcess",
	"GetExitCodeThread",
	"GetFileAttributesExW",
	"GetFileAttributesW",
	"GetFileInformationByHandle",
	"GetFileInformationByHandleEx",
	"GetFileSize",
	"GetFileSizeEx",
	"GetFileType",
	"GetFullPathNameA",
	"GetFullPathNameW",
	"gethostname",
	"GetLastError",
	"GetLocaleInfoEx",
	"GetLocaleInfoW",
	"GetLocalTime",
	"GetLogicalProcessorInformation",
	"GetLogicalProcessorInformationEx",
	"GetModuleFileNameA",
	"GetModuleFileNameW",
	"GetModuleHandleA",
	"GetModuleHandleExA",
	"GetModuleHandleExW",
	"GetModuleHandleW",
	"GetNativeSystemInfo",
	"GetOEMCP",
	"GetOverlappedResult",
	"getpeername",
	"GetProcAddress",
	"GetProcessAffinityMask",
	"GetProcessHeap",
	"GetProcessId",
	"GetProcessTimes",
	"GetQueuedCompletionStatus",
	"GetQueuedCompletionStatusEx",
	"getsockname",
	"getsockopt",
	"GetStartupInfoW",
	"GetStdHandle",
	"GetStringTypeW",
	"GetSystemDirectoryW",
	"GetSystemInfo",
	"GetSystemTime",
	"GetSystemTimeAsFileTime",
	"GetSystemTimePreciseAsFileTime",
	"GetSystemTimes",
	"GetTempPathA",
	"GetTempPathW",
	"GetThreadContext",
	"GetThreadId",
	"GetThreadPriority",
	"GetThreadTimes",
	"GetTickCount",
	"GetTickCount64",
	"GetTimeFormatEx",
	"GetTimeFormatW",
	"GetTimeZoneInformation",
	"GetUserDefaultLCID",
	"GetUserDefaultLocaleName",
	"GetVersionExW",
	"HeapAlloc",
	"HeapCreate",
	"HeapDestroy",
	"HeapFree",
	"HeapReAlloc",
	"HeapSize",
	"HeapValidate",
	"HeapWalk",
	"htonl",
	"htons",
	"inet_ntop",
	"inet_pton",
	"InitializeConditionVariable",
	"InitializeCriticalSection",
	"InitializeCriticalSectionAndSpinCount",
	"InitializeCriticalSectionEx",
	"InitializeSListHead",
	"InitializeSRWLock",
	"InitOnceBeginInitialize",
	"InitOnceComplete",
	"InitOnceExecuteOnce",
	"InterlockedFlushSList",
	"InterlockedPopEntrySList",
	"InterlockedPushEntrySList",
	"ioctlsocket",
	"IsDebuggerPresent",
	"IsProcessorFeaturePresent",
	"IsValidCodePage",
	"IsValidLocale",
	"IsValidLocaleName",
	"LCMapStringEx",
	"LCMapStringW",
	"LeaveCriticalSection",
	"listen",
	"LoadLibraryExA",
	"LoadLibraryExW",
	"LoadLibraryW",
	"LocalAlloc",
	"LocaleNameToLCID",
	"LocalFree",
	"MapViewOfFile",
	"MapViewOfFileEx",
	"MoveFileExW",
	"MultiByteToWideChar",
	"ntohl",
	"ntohs",
	"OpenEventW",
	"OpenMutexW",
	"OpenSemaphoreW",
	"OpenThread",
	"OutputDebugStringA",
	"OutputDebugStringW",
	"PropVariantClear",
	"QueryDepthSList",
	"QueryPerformanceCounter",
	"QueryPerformanceFrequency",
	"QueueUserAPC",
	"RaiseException",
	"ReadConsoleW",
	"ReadFile",
	"ReadFileEx",
	"recv",
	"recvfrom",
	"ReleaseMutex",
	"ReleaseSemaphore",
	"ReleaseSRWLockExclusive",
	"ReleaseSRWLockShared",
	"RemoveDirectoryW",
	"RemoveVectoredExceptionHandler",
	"ResetEvent",
	"ResumeThread",
	"RoActivateInstance",
	"RoGetActivationFactory",
	"RoInitialize",
	"RoOriginateErrorW",
	"RoUninitialize",
	"RtlCaptureContext",
	"RtlCaptureStackBackTrace",
	"RtlLookupFunctionEntry",
	"RtlPcToFileHeader",
	"RtlUnwind",
	"RtlUnwindEx",
	"RtlVirtualUnwind",
	"select",
	"send",
	"sendto",
	"SetConsoleCtrlHandler",
	"SetEndOfFile",
	"SetEnvironmentVariableA",
	"SetEnvironmentVariableW",
	"SetEvent",
	"SetFileAttributesW",
	"SetFileInformationByHandle",
	"SetFilePointer",
	"SetFilePointerEx",
	"SetFileTime",
	"SetLastError",
	"setsockopt",
	"SetStdHandle",
	"SetThreadAffinityMask",
	"SetThreadContext",
	"SetThreadDescription",
	"SetThreadIdealProcessor",
	"SetThreadIdealProcessorEx",
	"SetThreadpoolTimer",
	"SetThreadpoolWait",
	"SetThreadPriority",
	"SetUnhandledExceptionFilter",
	"SetWaitableTimer",
	"shutdown",
	"SignalObjectAndWait",
	"Sleep",
	"SleepConditionVariableCS",
	"SleepConditionVariableSRW",
	"SleepEx",
	"socket",
	"SubmitThreadpoolWork",
	"SuspendThread",
	"SwitchToFiber",
	"SwitchToThread",
	"SysAllocString",
	"SysAllocStringLen",
	"SysFreeString",
	"SysStringLen",
	"SystemTimeToFileTime",
	"SystemTimeToTzSpecificLocalTime",
	"TerminateProcess",
	"TerminateThread",
	"TlsAlloc",
	"TlsFree",
	"TlsGetValue",
	"TlsSetValue",
	"TryAcquireSRWLockExclusive",
	"TryAcquireSRWLockShared",
	"TryEnterCriticalSection",
	"UnhandledExceptionFilter",
	"UnmapViewOfFile",
	"VariantClear",
	"VariantInit",
	"VirtualAlloc",
	"VirtualFree",
	"VirtualProtect",
	"VirtualQuery",
	"WaitForMultipleObjects",
	"WaitForMultipleObjectsEx",
	"WaitForSingleObject",
	"WaitForSingleObjectEx",
	"WaitForThreadpoolTimerCallbacks",
	"WaitForThreadpoolWaitCallbacks",
	"WaitForThreadpoolWorkCallbacks",
	"WakeAllConditionVariable",
	"WakeConditionVariable",
	"WideCharToMultiByte",
	"WindowsCreateString",
	"WindowsCreateStringReference",
	"WindowsDeleteString",
	"WindowsGetStringRawBuffer",
	"WriteConsoleW",
	"WriteFile",
	"WriteFileEx",
	"WSACleanup",
	"WSAGetLastError",
	"WSAIoctl",
	"WSAPoll",
	"WSARecv",
	"WSARecvFrom",
	"WSASend",
	"WSASendTo",
	"WSASetLastError",
	"WSASocketW",
	"WSAStartup",
	"XMemAlloc",
	"XMemFree",
)

// additionalGameOSAPIs are console-only extensions and exports that are not
// part of the desktop API partition.
var additionalGameOSAPIs = newTable("AdditionalGameOSAPIs",
	"CertOpenSystemStoreW",
	"DStorageGetFactory",
	"MFResetDXGIDeviceManagerX",
)

func init() {
	mustBeSorted(gameOSAPIs, additionalGameOSAPIs)
}

// AllowedOnGameOS reports whether symbol may be imported from an OS module
// by a console title.
func AllowedOnGameOS(symbol string) bool {
	return gameOSAPIs.Contains(symbol) || additionalGameOSAPIs.Contains(symbol)
}
